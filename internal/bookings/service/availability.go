package service

import (
	"context"
	"errors"
	"time"

	"bedbook/internal/bookings/repository"
	catalogrepo "bedbook/internal/catalog/repository"
	"bedbook/pkg/bedid"
	apperrors "bedbook/pkg/errors"
	"bedbook/pkg/model"

	"golang.org/x/sync/errgroup"
)

type occupant struct {
	status    model.BookingStatus
	bookingID string
}

// ComputeAvailability renders every bed of a property for [start, end] as
// available, booked or approved. Reads are not transactional; a booking
// re-checks its beds at commit.
func (s *bookingService) ComputeAvailability(ctx context.Context, propertyID, startDate, endDate, roomType string) (*model.Availability, error) {
	if propertyID == "" {
		return nil, apperrors.MissingFields([]string{"propertyId"})
	}
	start, end, err := checkWindow(startDate, endDate)
	if err != nil {
		return nil, err
	}

	var (
		property *model.Property
		catalog  *model.RoomCatalog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		property, err = s.view.Properties.FindByID(gctx, propertyID)
		if errors.Is(err, catalogrepo.ErrPropertyNotFound) {
			return apperrors.NotFoundWithID("Property", propertyID)
		}
		return err
	})
	g.Go(func() error {
		var err error
		catalog, err = s.view.Catalogs.FindByProperty(gctx, propertyID)
		if errors.Is(err, catalogrepo.ErrCatalogNotFound) {
			return apperrors.NotFound("Room configuration")
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.storeError(err, "Failed to load property")
	}

	capacity := 0
	if roomType != "" {
		n, ok := catalog.CapacityOf(roomType)
		if !ok {
			return nil, apperrors.RoomTypeNotFound(roomType)
		}
		capacity = n
	}

	query := repository.OverlapQuery{
		PropertyID:       propertyID,
		Start:            start,
		End:              end,
		ExcludedStatuses: repository.ViewExcludedStatuses,
	}
	reservations, err := s.repo.FindOverlapping(ctx, query)
	if err != nil {
		s.cfg.Log.Error("Failed to load overlapping bookings", "property_id", propertyID, "error", err)
		return nil, s.storeError(err, "Failed to check availability")
	}

	availability := &model.Availability{
		PropertyID:          propertyID,
		PropertyName:        property.Name,
		StartDate:           start,
		EndDate:             end,
		RoomType:            roomType,
		Floors:              buildFloors(catalog, occupancy(query, reservations), capacity),
		AmbiguousCapacities: catalog.AmbiguousCapacities(),
	}
	for _, floor := range availability.Floors {
		for _, bed := range floor.Beds {
			availability.Statistics.Add(bed.Status)
		}
	}

	return availability, nil
}

// CheckAvailability lists the identifiers that a booking for the window
// would collide with, using the commit-time status set.
func (s *bookingService) CheckAvailability(ctx context.Context, req *model.AvailabilityCheckRequest) (*model.AvailabilityCheck, error) {
	if err := s.validate(s.validator.ValidateAvailabilityCheck(req), "Availability check validation failed"); err != nil {
		return nil, err
	}
	start, end, err := checkWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	property, err := s.view.Properties.FindByID(ctx, req.PropertyID)
	if err != nil {
		if errors.Is(err, catalogrepo.ErrPropertyNotFound) {
			return nil, apperrors.NotFoundWithID("Property", req.PropertyID)
		}
		return nil, s.storeError(err, "Failed to load property")
	}

	reservations, err := s.repo.FindOverlapping(ctx, repository.OverlapQuery{
		PropertyID:       req.PropertyID,
		Start:            start,
		End:              end,
		ExcludedStatuses: repository.CommitExcludedStatuses,
	})
	if err != nil {
		return nil, s.storeError(err, "Failed to check availability")
	}

	unavailable := []string{}
	seen := make(map[string]bool)
	for _, r := range reservations {
		for _, d := range r.RoomDetails {
			if !seen[d.BedIdentifier] {
				seen[d.BedIdentifier] = true
				unavailable = append(unavailable, d.BedIdentifier)
			}
		}
	}

	return &model.AvailabilityCheck{
		PropertyID:       property.ID,
		PropertyName:     property.Name,
		StartDate:        start,
		EndDate:          end,
		UnavailableRooms: unavailable,
	}, nil
}

// checkWindow parses an availability window. A missing start is today, a
// missing end is start plus one day.
func checkWindow(startDate, endDate string) (time.Time, time.Time, error) {
	start := midnight(time.Now())
	if startDate != "" {
		t, err := parseDate(startDate)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.InvalidDateRange("Invalid startDate format. Use YYYY-MM-DD.")
		}
		start = t
	}

	end := start.AddDate(0, 0, 1)
	if endDate != "" {
		t, err := parseDate(endDate)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.InvalidDateRange("Invalid endDate format. Use YYYY-MM-DD.")
		}
		end = t
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, apperrors.InvalidDateRange("End date must be after start date.")
	}
	return start, end, nil
}

// occupancy maps each held identifier to the earliest reservation holding
// it. reservations arrive sorted by move-in date.
func occupancy(query repository.OverlapQuery, reservations []*model.Reservation) map[string]occupant {
	occupied := make(map[string]occupant)
	for _, r := range reservations {
		if !query.Matches(r) {
			continue
		}
		for _, d := range r.RoomDetails {
			if _, ok := occupied[d.BedIdentifier]; !ok {
				occupied[d.BedIdentifier] = occupant{status: r.Status, bookingID: r.ID}
			}
		}
	}
	return occupied
}

// buildFloors walks the catalog in order. capacity > 0 keeps only rooms
// with that many beds.
func buildFloors(catalog *model.RoomCatalog, occupied map[string]occupant, capacity int) []model.FloorAvailability {
	floors := []model.FloorAvailability{}
	for _, floor := range catalog.Floors {
		entry := model.FloorAvailability{Floor: floor.Number, Beds: []model.BedAvailability{}}

		for _, room := range floor.Rooms {
			if capacity > 0 && len(room.Beds) != capacity {
				continue
			}
			sharingType := catalog.InferRoomType(len(room.Beds))

			for _, bed := range room.Beds {
				id := bedid.Canonical(sharingType, room.Number, bed)
				view := model.BedAvailability{
					Floor:         floor.Number,
					RoomNumber:    room.Number,
					BedName:       bed,
					BedLetter:     bedid.Normalize(bed),
					RoomType:      sharingType,
					BedIdentifier: id,
					Status:        model.BedAvailable,
					Available:     true,
				}
				if occ, ok := occupied[id]; ok {
					view.Available = false
					view.BookingID = occ.bookingID
					view.Status = model.BedBooked
					if occ.status.HoldsApproval() {
						view.Status = model.BedApproved
					}
				}
				entry.Beds = append(entry.Beds, view)
				entry.Statistics.Add(view.Status)
			}
		}

		if len(entry.Beds) > 0 {
			floors = append(floors, entry)
		}
	}
	return floors
}
