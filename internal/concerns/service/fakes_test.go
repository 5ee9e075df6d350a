package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	bookingserrors "bedbook/internal/bookings/errors"
	bookingrepo "bedbook/internal/bookings/repository"
	catalogrepo "bedbook/internal/catalog/repository"
	concernserrors "bedbook/internal/concerns/errors"
	"bedbook/internal/concerns/repository"
	"bedbook/internal/concerns/validator"
	"bedbook/pkg/config"
	"bedbook/pkg/logger"
	"bedbook/pkg/model"
)

type fakeConcernRepository struct {
	mu       sync.Mutex
	concerns map[string]*model.Concern
	nextID   int
}

func cloneConcern(c *model.Concern) *model.Concern {
	out := *c
	out.InternalNotes = slices.Clone(c.InternalNotes)
	return &out
}

func (f *fakeConcernRepository) Create(ctx context.Context, c *model.Concern) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID = fmt.Sprintf("%024x", f.nextID)
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	f.concerns[c.ID] = cloneConcern(c)
	return nil
}

func (f *fakeConcernRepository) FindByID(ctx context.Context, id string) (*model.Concern, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.concerns[id]; ok {
		return cloneConcern(c), nil
	}
	return nil, concernserrors.ErrNotFound
}

func (f *fakeConcernRepository) FindByUser(ctx context.Context, userID string) ([]*model.Concern, error) {
	return f.filter(func(c *model.Concern) bool { return c.UserID == userID }), nil
}

func (f *fakeConcernRepository) FindByProperties(ctx context.Context, propertyIDs []string) ([]*model.Concern, error) {
	return f.filter(func(c *model.Concern) bool { return slices.Contains(propertyIDs, c.PropertyID) }), nil
}

func (f *fakeConcernRepository) filter(keep func(*model.Concern) bool) []*model.Concern {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.Concern{}
	for _, c := range f.concerns {
		if keep(c) {
			out = append(out, cloneConcern(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeConcernRepository) UpdateStatus(ctx context.Context, id string, from []model.ConcernStatus, to model.ConcernStatus, fields repository.StatusFields) (*model.Concern, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.concerns[id]
	if !ok || !slices.Contains(from, c.Status) {
		return nil, concernserrors.ErrStatusConflict
	}
	c.Status = to
	c.AdminResponse = fields.AdminResponse
	c.HandledBy = fields.HandledBy
	if fields.HandledAt != nil {
		c.HandledAt = fields.HandledAt
	}
	if fields.CompletedAt != nil {
		c.CompletedAt = fields.CompletedAt
	}
	return cloneConcern(c), nil
}

func (f *fakeConcernRepository) AddNote(ctx context.Context, id string, note model.InternalNote) (*model.Concern, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.concerns[id]
	if !ok {
		return nil, concernserrors.ErrNotFound
	}
	c.InternalNotes = append(c.InternalNotes, note)
	return cloneConcern(c), nil
}

// fakeBookingRepository serves the two reads concerns make. Any other call
// panics on the nil embedded interface.
type fakeBookingRepository struct {
	bookingrepo.BookingRepository
	reservations map[string]*model.Reservation
}

func (f *fakeBookingRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if r, ok := f.reservations[id]; ok {
		c := *r
		return &c, nil
	}
	return nil, bookingserrors.ErrNotFound
}

func (f *fakeBookingRepository) FindOverlapping(ctx context.Context, q bookingrepo.OverlapQuery) ([]*model.Reservation, error) {
	var out []*model.Reservation
	for _, r := range f.reservations {
		if q.Matches(r) {
			c := *r
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeCatalogRepository struct {
	catalog *model.RoomCatalog
}

func (f *fakeCatalogRepository) FindByProperty(ctx context.Context, id string) (*model.RoomCatalog, error) {
	if f.catalog != nil && id == f.catalog.PropertyID {
		return f.catalog, nil
	}
	return nil, catalogrepo.ErrCatalogNotFound
}

type fakePropertyRepository struct {
	properties map[string]*model.Property
}

func (f *fakePropertyRepository) FindByID(ctx context.Context, id string) (*model.Property, error) {
	if p, ok := f.properties[id]; ok {
		return p, nil
	}
	return nil, catalogrepo.ErrPropertyNotFound
}

func (f *fakePropertyRepository) FindIDsByClient(ctx context.Context, clientID string) ([]string, error) {
	var ids []string
	for id, p := range f.properties {
		if p.ClientID == clientID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ────────────────────────────────────────────────
// Fixtures
// ────────────────────────────────────────────────

const (
	propertyID = "prop-1"
	ownerID    = "client-1"
	bookingID  = "booking-mine"
)

var (
	tenant   = model.Principal{UserID: "user-1", Role: model.RoleUser}
	neighbor = model.Principal{UserID: "user-2", Role: model.RoleUser}
	owner    = model.Principal{UserID: "owner-1", Role: model.RoleClient, ClientID: ownerID}
	stranger = model.Principal{UserID: "owner-9", Role: model.RoleClient, ClientID: "client-9"}
	admin    = model.Principal{UserID: "admin-1", Role: model.RoleAdmin}
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testCatalog() *model.RoomCatalog {
	return &model.RoomCatalog{
		PropertyID: propertyID,
		Floors: []model.Floor{
			{Number: 1, Rooms: []model.Room{
				{Number: "101", Beds: []string{"Bed A", "Bed B"}},
				{Number: "102", Beds: []string{"A", "B", "C"}},
			}},
			{Number: 2, Rooms: []model.Room{
				{Number: "201", Beds: []string{"Bed A", "Bed B"}},
				{Number: "2-01", Beds: []string{"Bed A"}},
			}},
		},
		RoomTypes: []model.RoomTypeConfig{
			{Type: "double", Capacity: 2, Price: 9000},
			{Type: "triple", Capacity: 3, Price: 7000},
			{Type: "single", Capacity: 1, Price: 12000},
		},
	}
}

func stay(id, userID string, status model.BookingStatus, moveIn, moveOut, bed string) *model.Reservation {
	return &model.Reservation{
		ID:          id,
		UserID:      userID,
		ClientID:    ownerID,
		PropertyID:  propertyID,
		RoomType:    model.RoomTypeSnapshot{Type: "double", Capacity: 2},
		RoomDetails: []model.RoomDetail{{BedIdentifier: bed, SharingType: "double", Floor: 1, RoomNumber: "101", BedLabel: "Bed A"}},
		MoveInDate:  date(moveIn),
		MoveOutDate: date(moveOut),
		Status:      status,
	}
}

type testEnv struct {
	concerns *fakeConcernRepository
	bookings *fakeBookingRepository
	service  ConcernService
}

// newTestEnv seeds the tenant's stay on double-101-Bed A and a neighbour
// holding double-101-Bed B over the same months.
func newTestEnv(extra ...*model.Reservation) *testEnv {
	reservations := map[string]*model.Reservation{}
	for _, r := range append([]*model.Reservation{
		stay(bookingID, tenant.UserID, model.StatusApproved, "2024-01-01", "2024-03-01", "double-101-Bed A"),
		stay("booking-neighbor", neighbor.UserID, model.StatusApproved, "2024-02-01", "2024-04-01", "double-101-Bed B"),
	}, extra...) {
		reservations[r.ID] = r
	}

	env := &testEnv{
		concerns: &fakeConcernRepository{concerns: map[string]*model.Concern{}},
		bookings: &fakeBookingRepository{reservations: reservations},
	}
	properties := &fakePropertyRepository{properties: map[string]*model.Property{
		propertyID: {ID: propertyID, Name: "Green Nest", ClientID: ownerID, ApprovalStatus: model.PropertyApproved},
	}}
	cfg := &config.Config{Log: logger.Discard()}

	env.service = NewConcernService(
		env.concerns,
		env.bookings,
		&fakeCatalogRepository{catalog: testCatalog()},
		properties,
		validator.NewConcernValidator(cfg.Log),
		cfg,
	)
	return env
}

func intPtr(n int) *int { return &n }
