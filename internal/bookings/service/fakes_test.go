package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	bookingserrors "bedbook/internal/bookings/errors"
	"bedbook/internal/bookings/events"
	"bedbook/internal/bookings/repository"
	"bedbook/internal/bookings/validator"
	catalogrepo "bedbook/internal/catalog/repository"
	"bedbook/pkg/config"
	mongotx "bedbook/pkg/db/mongo"
	"bedbook/pkg/logger"
	"bedbook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// ────────────────────────────────────────────────
// In-memory booking repository
// ────────────────────────────────────────────────

type fakeBookingRepository struct {
	mu           sync.Mutex
	reservations map[string]*model.Reservation
	nextID       int

	findByIDErr error
	overlapErr  error
	createErr   error
	countFunc   func(ctx context.Context) (int64, error)
}

func newFakeBookingRepository(existing ...*model.Reservation) *fakeBookingRepository {
	repo := &fakeBookingRepository{reservations: map[string]*model.Reservation{}}
	for _, r := range existing {
		if r.ID == "" {
			r.ID = repo.newID()
		}
		repo.reservations[r.ID] = clone(r)
	}
	return repo
}

func (f *fakeBookingRepository) newID() string {
	f.nextID++
	return fmt.Sprintf("%024x", f.nextID)
}

func clone(r *model.Reservation) *model.Reservation {
	c := *r
	c.RoomDetails = slices.Clone(r.RoomDetails)
	c.Payments = slices.Clone(r.Payments)
	return &c
}

func (f *fakeBookingRepository) get(id string) *model.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.reservations[id]; ok {
		return clone(r)
	}
	return nil
}

func (f *fakeBookingRepository) Create(ctx context.Context, r *model.Reservation) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = f.newID()
	r.CreatedAt = time.Now().UTC()
	r.UpdatedAt = r.CreatedAt
	f.reservations[r.ID] = clone(r)
	return nil
}

func (f *fakeBookingRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if f.findByIDErr != nil {
		return nil, f.findByIDErr
	}
	if r := f.get(id); r != nil {
		return r, nil
	}
	return nil, bookingserrors.ErrNotFound
}

func (f *fakeBookingRepository) FindOverlapping(ctx context.Context, q repository.OverlapQuery) ([]*model.Reservation, error) {
	if f.overlapErr != nil {
		return nil, f.overlapErr
	}
	return f.filter(q.Matches, func(a, b *model.Reservation) bool { return a.MoveInDate.Before(b.MoveInDate) }), nil
}

func (f *fakeBookingRepository) FindByUser(ctx context.Context, userID string) ([]*model.Reservation, error) {
	return f.filter(func(r *model.Reservation) bool { return r.UserID == userID }, nil), nil
}

func (f *fakeBookingRepository) FindByProperties(ctx context.Context, propertyIDs []string) ([]*model.Reservation, error) {
	return f.filter(func(r *model.Reservation) bool { return slices.Contains(propertyIDs, r.PropertyID) }, nil), nil
}

func (f *fakeBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	all := f.filter(func(*model.Reservation) bool { return true }, nil)
	if int(offset) >= len(all) {
		return []*model.Reservation{}, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeBookingRepository) Count(ctx context.Context) (int64, error) {
	if f.countFunc != nil {
		return f.countFunc(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.reservations)), nil
}

func (f *fakeBookingRepository) filter(keep func(*model.Reservation) bool, less func(a, b *model.Reservation) bool) []*model.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.Reservation{}
	for _, r := range f.reservations {
		if keep(r) {
			out = append(out, clone(r))
		}
	}
	if less == nil {
		less = func(a, b *model.Reservation) bool { return a.ID < b.ID }
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (f *fakeBookingRepository) Transition(ctx context.Context, id string, from []model.BookingStatus, to model.BookingStatus, fields repository.TransitionFields) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok || !slices.Contains(from, r.Status) {
		return nil, bookingserrors.ErrStatusConflict
	}
	r.Status = to
	if fields.ApprovedBy != "" {
		r.ApprovedBy = fields.ApprovedBy
	}
	if fields.ApprovedAt != nil {
		r.ApprovedAt = fields.ApprovedAt
	}
	if fields.RejectedBy != "" {
		r.RejectedBy = fields.RejectedBy
	}
	if fields.RejectionReason != "" {
		r.RejectionReason = fields.RejectionReason
	}
	if fields.CancelledAt != nil {
		r.CancelledAt = fields.CancelledAt
	}
	if fields.PaymentStatus != "" {
		r.PaymentInfo.PaymentStatus = fields.PaymentStatus
	}
	return clone(r), nil
}

func (f *fakeBookingRepository) SavePayments(ctx context.Context, reservation *model.Reservation, from []model.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[reservation.ID]
	if !ok || !slices.Contains(from, r.Status) {
		return bookingserrors.ErrStatusConflict
	}
	f.reservations[reservation.ID] = clone(reservation)
	return nil
}

func (f *fakeBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type fakeBedLockRepository struct {
	touched [][]string
	err     error
}

func (f *fakeBedLockRepository) Touch(ctx context.Context, propertyID string, ids []string) error {
	f.touched = append(f.touched, slices.Clone(ids))
	return f.err
}

// ────────────────────────────────────────────────
// Catalog collaborators
// ────────────────────────────────────────────────

type mockCatalogRepository struct {
	findByPropertyFunc func(ctx context.Context, propertyID string) (*model.RoomCatalog, error)
}

func (m *mockCatalogRepository) FindByProperty(ctx context.Context, propertyID string) (*model.RoomCatalog, error) {
	return m.findByPropertyFunc(ctx, propertyID)
}

type mockPropertyRepository struct {
	properties map[string]*model.Property
	err        error
}

func (m *mockPropertyRepository) FindByID(ctx context.Context, id string) (*model.Property, error) {
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.properties[id]; ok {
		return p, nil
	}
	return nil, catalogrepo.ErrPropertyNotFound
}

func (m *mockPropertyRepository) FindIDsByClient(ctx context.Context, clientID string) ([]string, error) {
	var ids []string
	for id, p := range m.properties {
		if p.ClientID == clientID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type mockUserRepository struct {
	users map[string]*model.User
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, catalogrepo.ErrUserNotFound
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType string, r *model.Reservation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

// ────────────────────────────────────────────────
// Fixtures
// ────────────────────────────────────────────────

const (
	propertyID = "prop-1"
	ownerID    = "client-1"
)

var (
	tenant = model.Principal{UserID: "user-1", Role: model.RoleUser}
	owner  = model.Principal{UserID: "owner-1", Role: model.RoleClient, ClientID: ownerID}
	admin  = model.Principal{UserID: "admin-1", Role: model.RoleAdmin}
)

func date(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
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
				{Number: "2-01", Beds: []string{"Bed A"}},
			}},
		},
		RoomTypes: []model.RoomTypeConfig{
			{Type: "double", Label: "Double Sharing", Capacity: 2, Price: 9000, Deposit: 5000},
			{Type: "triple", Label: "Triple Sharing", Capacity: 3, Price: 7000, Deposit: 4000},
			{Type: "single", Label: "Single", Capacity: 1, Price: 12000, Deposit: 8000},
		},
	}
}

type testEnv struct {
	repo       *fakeBookingRepository
	locks      *fakeBedLockRepository
	properties *mockPropertyRepository
	catalogs   *mockCatalogRepository
	catalog    *model.RoomCatalog
	publisher  *recordingPublisher
	service    BookingService
}

func newTestEnv(existing ...*model.Reservation) *testEnv {
	env := &testEnv{
		repo:  newFakeBookingRepository(existing...),
		locks: &fakeBedLockRepository{},
		properties: &mockPropertyRepository{properties: map[string]*model.Property{
			propertyID: {ID: propertyID, Name: "Green Nest", ClientID: ownerID, ApprovalStatus: model.PropertyApproved},
			"prop-draft": {ID: "prop-draft", Name: "Draft", ClientID: ownerID, ApprovalStatus: "pending"},
		}},
		catalog:   testCatalog(),
		publisher: &recordingPublisher{},
	}

	env.catalogs = &mockCatalogRepository{findByPropertyFunc: func(ctx context.Context, id string) (*model.RoomCatalog, error) {
		if id == propertyID || id == "prop-draft" {
			return env.catalog, nil
		}
		return nil, catalogrepo.ErrCatalogNotFound
	}}
	users := &mockUserRepository{users: map[string]*model.User{
		"user-1":   {ID: "user-1", Name: "Asha", Role: model.RoleUser, ClientID: ownerID},
		"orphan-1": {ID: "orphan-1", Name: "No Client", Role: model.RoleUser},
	}}

	cfg := &config.Config{
		Log:                logger.Discard(),
		ReadTimeout:        time.Second,
		WriteTimeout:       time.Second,
		TransactionTimeout: 5 * time.Second,
	}

	source := CatalogSource{Catalogs: env.catalogs, Properties: env.properties, Users: users}
	env.service = NewBookingService(
		env.repo,
		env.locks,
		source,
		CatalogSource{},
		env.publisher,
		validator.NewBookingValidator(cfg.Log),
		cfg,
	)
	return env
}

func reservationOn(status model.BookingStatus, moveIn, moveOut string, beds ...string) *model.Reservation {
	details := make([]model.RoomDetail, 0, len(beds))
	for _, b := range beds {
		details = append(details, model.RoomDetail{BedIdentifier: b})
	}
	r := &model.Reservation{
		UserID:      tenant.UserID,
		ClientID:    ownerID,
		PropertyID:  propertyID,
		RoomDetails: details,
		MoveInDate:  date(moveIn),
		MoveOutDate: date(moveOut),
		Status:      status,
		Pricing:     model.Pricing{TotalRent: 9000, SecurityDeposit: 5000},
		PaymentInfo: model.PaymentInfo{PaymentStatus: model.PaymentPending},
	}
	r.RecomputeOutstanding()
	return r
}

var _ events.Publisher = (*recordingPublisher)(nil)
