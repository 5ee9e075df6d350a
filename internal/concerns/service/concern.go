package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bookingserrors "bedbook/internal/bookings/errors"
	bookingrepo "bedbook/internal/bookings/repository"
	catalogrepo "bedbook/internal/catalog/repository"
	concernserrors "bedbook/internal/concerns/errors"
	"bedbook/internal/concerns/repository"
	"bedbook/internal/concerns/validator"
	"bedbook/pkg/bedid"
	"bedbook/pkg/config"
	mongotx "bedbook/pkg/db/mongo"
	apperrors "bedbook/pkg/errors"
	"bedbook/pkg/model"
)

type ConcernService interface {
	AvailableBeds(ctx context.Context, principal model.Principal, bookingID, sharingType string) (*model.ChangeOptions, error)
	AvailableRooms(ctx context.Context, principal model.Principal, bookingID, sharingType string) (*model.ChangeOptions, error)
	PropertyRoomTypes(ctx context.Context, propertyID string) ([]model.RoomTypeConfig, error)

	Submit(ctx context.Context, principal model.Principal, req *model.ConcernRequest) (*model.Concern, error)
	ListForUser(ctx context.Context, principal model.Principal) ([]*model.Concern, error)
	ListForClient(ctx context.Context, principal model.Principal) ([]*model.Concern, error)
	GetByID(ctx context.Context, principal model.Principal, id string) (*model.Concern, error)
	UpdateStatus(ctx context.Context, principal model.Principal, id string, req *model.ConcernStatusUpdate) (*model.Concern, error)
	AddNote(ctx context.Context, principal model.Principal, id string, req *model.NoteRequest) (*model.Concern, error)
}

type concernService struct {
	repo       repository.ConcernRepository
	bookings   bookingrepo.BookingRepository
	catalogs   catalogrepo.CatalogRepository
	properties catalogrepo.PropertyRepository
	validator  *validator.ConcernValidator
	cfg        *config.Config
}

func NewConcernService(
	repo repository.ConcernRepository,
	bookings bookingrepo.BookingRepository,
	catalogs catalogrepo.CatalogRepository,
	properties catalogrepo.PropertyRepository,
	validator *validator.ConcernValidator,
	cfg *config.Config,
) ConcernService {
	return &concernService{
		repo:       repo,
		bookings:   bookings,
		catalogs:   catalogs,
		properties: properties,
		validator:  validator,
		cfg:        cfg,
	}
}

// AvailableBeds lists the beds of sharingType that are free for the whole
// stay of the booking. The booking's own beds are never offered. An empty
// sharingType means the booking's current room type.
func (s *concernService) AvailableBeds(ctx context.Context, principal model.Principal, bookingID, sharingType string) (*model.ChangeOptions, error) {
	reservation, err := s.loadBooking(ctx, principal, bookingID)
	if err != nil {
		return nil, err
	}
	if sharingType == "" {
		sharingType = reservation.RoomType.Type
	}
	return s.changeOptions(ctx, reservation, sharingType)
}

// AvailableRooms is AvailableBeds for an explicit sharing type, grouped by
// floor.
func (s *concernService) AvailableRooms(ctx context.Context, principal model.Principal, bookingID, sharingType string) (*model.ChangeOptions, error) {
	sharingType = strings.TrimSpace(sharingType)
	if sharingType == "" {
		return nil, apperrors.MissingFields([]string{"sharingType"})
	}
	reservation, err := s.loadBooking(ctx, principal, bookingID)
	if err != nil {
		return nil, err
	}

	options, err := s.changeOptions(ctx, reservation, sharingType)
	if err != nil {
		return nil, err
	}
	options.Floors = make(map[int][]model.BedOption)
	for _, bed := range options.Beds {
		options.Floors[bed.Floor] = append(options.Floors[bed.Floor], bed)
	}
	return options, nil
}

func (s *concernService) PropertyRoomTypes(ctx context.Context, propertyID string) ([]model.RoomTypeConfig, error) {
	if propertyID == "" {
		return nil, apperrors.MissingFields([]string{"propertyId"})
	}
	catalog, err := s.catalog(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if catalog.RoomTypes == nil {
		return []model.RoomTypeConfig{}, nil
	}
	return catalog.RoomTypes, nil
}

func (s *concernService) Submit(ctx context.Context, principal model.Principal, req *model.ConcernRequest) (*model.Concern, error) {
	if principal.UserID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if err := s.validate(s.validator.Validate(req), "Concern validation failed"); err != nil {
		return nil, err
	}

	reservation, err := s.loadBooking(ctx, principal, req.BookingID)
	if err != nil {
		return nil, err
	}
	if reservation.UserID != principal.UserID && !principal.IsAdmin() {
		return nil, apperrors.Forbidden("Only the tenant can raise a concern on this booking")
	}
	if reservation.Status.IsTerminal() {
		return nil, apperrors.InvalidTransition(
			fmt.Sprintf("Cannot raise a concern on a %s booking", reservation.Status),
			string(reservation.Status),
		)
	}

	concern := &model.Concern{
		BookingID:          reservation.ID,
		UserID:             reservation.UserID,
		PropertyID:         reservation.PropertyID,
		Type:               req.Type,
		Status:             model.ConcernPending,
		Priority:           req.Priority,
		CurrentSharingType: reservation.RoomType.Type,
		InternalNotes:      []model.InternalNote{},
	}
	if concern.Priority == "" {
		concern.Priority = model.PriorityMedium
	}
	if len(reservation.RoomDetails) > 0 {
		concern.CurrentRoom = reservation.RoomDetails[0].RoomNumber
		concern.CurrentBed = reservation.RoomDetails[0].BedLabel
	}

	if req.Type.IsChange() {
		if err := s.checkRequestedBed(ctx, reservation, req, concern); err != nil {
			return nil, err
		}
	} else {
		concern.Comment = req.Comment
	}

	if err := s.repo.Create(ctx, concern); err != nil {
		s.cfg.Log.Error("Failed to create concern", "booking_id", reservation.ID, "error", err)
		return nil, s.storeError(err, "Failed to submit concern")
	}

	s.cfg.Log.Info("Concern submitted",
		"id", concern.ID,
		"booking_id", concern.BookingID,
		"type", concern.Type,
		"requested", concern.RequestedIdentifier,
	)
	return concern, nil
}

// checkRequestedBed resolves the target bed of a change request and checks
// it is free for the booking's stay. A bed change stays in the current room
// type; a room change must land on the requested sharing type and floor.
func (s *concernService) checkRequestedBed(ctx context.Context, reservation *model.Reservation, req *model.ConcernRequest, concern *model.Concern) error {
	catalog, err := s.catalog(ctx, reservation.PropertyID)
	if err != nil {
		return err
	}

	loc, ok := bedid.Resolve(catalog, req.RequestedRoom, req.RequestedBed)
	if !ok {
		return apperrors.NotFound("Requested bed")
	}
	sharingType := catalog.InferRoomType(loc.BedCount)
	id := bedid.Canonical(sharingType, loc.RoomNumber, loc.BedLabel)

	want := reservation.RoomType.Type
	if req.Type == model.ConcernRoomChange {
		want = req.RequestedSharingType
		if *req.RequestedFloor != loc.Floor {
			return apperrors.Validation("Requested bed is not on the requested floor", map[string]any{
				"requestedFloor": *req.RequestedFloor,
				"floor":          loc.Floor,
			})
		}
	}
	if !strings.EqualFold(sharingType, want) {
		return apperrors.Validation(fmt.Sprintf("Requested bed is not a %s bed", want), map[string]any{
			"requestedSharingType": want,
			"sharingType":          sharingType,
		})
	}
	for _, own := range reservation.BedIdentifiers() {
		if own == id {
			return apperrors.InvalidInput("Requested bed is already assigned to this booking")
		}
	}

	held, err := s.bookings.FindOverlapping(ctx, bookingrepo.OverlapQuery{
		PropertyID:       reservation.PropertyID,
		Start:            reservation.MoveInDate,
		End:              reservation.MoveOutDate,
		ExcludedStatuses: bookingrepo.CommitExcludedStatuses,
		BedIdentifiers:   []string{id},
	})
	if err != nil {
		return s.storeError(err, "Failed to check bed availability")
	}
	for _, r := range held {
		if r.ID != reservation.ID {
			return apperrors.BedsUnavailable([]string{id})
		}
	}

	concern.RequestedRoom = loc.RoomNumber
	concern.RequestedBed = loc.BedLabel
	concern.RequestedIdentifier = id
	if req.Type == model.ConcernRoomChange {
		concern.RequestedSharingType = sharingType
		floor := loc.Floor
		concern.RequestedFloor = &floor
	}
	return nil
}

func (s *concernService) ListForUser(ctx context.Context, principal model.Principal) ([]*model.Concern, error) {
	if principal.UserID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	concerns, err := s.repo.FindByUser(ctx, principal.UserID)
	if err != nil {
		return nil, s.storeError(err, "Failed to retrieve concerns")
	}
	return concerns, nil
}

func (s *concernService) ListForClient(ctx context.Context, principal model.Principal) ([]*model.Concern, error) {
	if !principal.IsClient() || principal.ClientID == "" {
		return nil, apperrors.Forbidden("Only property owners can list property concerns")
	}
	propertyIDs, err := s.properties.FindIDsByClient(ctx, principal.ClientID)
	if err != nil {
		return nil, s.storeError(err, "Failed to retrieve properties")
	}
	concerns, err := s.repo.FindByProperties(ctx, propertyIDs)
	if err != nil {
		return nil, s.storeError(err, "Failed to retrieve concerns")
	}
	return concerns, nil
}

func (s *concernService) GetByID(ctx context.Context, principal model.Principal, id string) (*model.Concern, error) {
	concern, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if concern.UserID == principal.UserID && principal.UserID != "" {
		return concern, nil
	}
	if err := s.authorizeOwner(ctx, principal, concern.PropertyID); err != nil {
		return nil, err
	}
	return concern, nil
}

func (s *concernService) UpdateStatus(ctx context.Context, principal model.Principal, id string, req *model.ConcernStatusUpdate) (*model.Concern, error) {
	if err := s.validate(s.validator.ValidateStatusUpdate(req), "Concern status validation failed"); err != nil {
		return nil, err
	}
	concern, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(ctx, principal, concern.PropertyID); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	fields := repository.StatusFields{
		AdminResponse: req.AdminResponse,
		HandledBy:     principal.UserID,
	}
	if concern.HandledAt == nil {
		fields.HandledAt = &now
	}
	if req.Status == model.ConcernCompleted {
		fields.CompletedAt = &now
	}

	updated, err := s.repo.UpdateStatus(ctx, id, model.ConcernPredecessors(req.Status), req.Status, fields)
	if err != nil {
		if !errors.Is(err, concernserrors.ErrStatusConflict) {
			return nil, s.storeError(s.findError(err, id), "Failed to update concern")
		}
		current, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		msg := fmt.Sprintf("Cannot move concern from %s to %s", current.Status, req.Status)
		if current.Status.IsTerminal() {
			msg = fmt.Sprintf("Concern is already %s", current.Status)
		}
		return nil, apperrors.InvalidTransition(msg, string(current.Status))
	}

	s.cfg.Log.Info("Concern status updated", "id", id, "status", updated.Status, "handled_by", principal.UserID)
	return updated, nil
}

func (s *concernService) AddNote(ctx context.Context, principal model.Principal, id string, req *model.NoteRequest) (*model.Concern, error) {
	if err := s.validate(s.validator.ValidateNote(req), "Note content is required"); err != nil {
		return nil, err
	}
	concern, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(ctx, principal, concern.PropertyID); err != nil {
		return nil, err
	}

	updated, err := s.repo.AddNote(ctx, id, model.InternalNote{
		Note:      req.Note,
		CreatedBy: principal.UserID,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	})
	if err != nil {
		return nil, s.storeError(s.findError(err, id), "Failed to add note")
	}
	return updated, nil
}

// --- Helpers ---

// changeOptions walks the catalog for rooms of sharingType and keeps beds no
// other active reservation holds during the booking's stay.
func (s *concernService) changeOptions(ctx context.Context, reservation *model.Reservation, sharingType string) (*model.ChangeOptions, error) {
	catalog, err := s.catalog(ctx, reservation.PropertyID)
	if err != nil {
		return nil, err
	}
	capacity, ok := catalog.CapacityOf(sharingType)
	if !ok {
		return nil, apperrors.RoomTypeNotFound(sharingType)
	}

	held, err := s.bookings.FindOverlapping(ctx, bookingrepo.OverlapQuery{
		PropertyID:       reservation.PropertyID,
		Start:            reservation.MoveInDate,
		End:              reservation.MoveOutDate,
		ExcludedStatuses: bookingrepo.CommitExcludedStatuses,
	})
	if err != nil {
		return nil, s.storeError(err, "Failed to check availability")
	}
	taken := make(map[string]bool)
	for _, r := range held {
		for _, id := range r.BedIdentifiers() {
			taken[id] = true
		}
	}

	beds := []model.BedOption{}
	for _, floor := range catalog.Floors {
		for _, room := range floor.Rooms {
			if len(room.Beds) != capacity {
				continue
			}
			tag := catalog.InferRoomType(len(room.Beds))
			for _, bed := range room.Beds {
				id := bedid.Canonical(tag, room.Number, bed)
				if taken[id] {
					continue
				}
				beds = append(beds, model.BedOption{
					Floor:         floor.Number,
					RoomNumber:    room.Number,
					BedLetter:     bedid.Normalize(bed),
					ActualBedName: bed,
					SharingType:   tag,
					BedIdentifier: id,
					Available:     true,
				})
			}
		}
	}

	return &model.ChangeOptions{
		BookingID:   reservation.ID,
		PropertyID:  reservation.PropertyID,
		SharingType: sharingType,
		Beds:        beds,
		CurrentBooking: model.StayWindow{
			MoveInDate:  reservation.MoveInDate,
			MoveOutDate: reservation.MoveOutDate,
		},
	}, nil
}

// loadBooking reads a reservation the principal may act on: the tenant, the
// owning client or an admin.
func (s *concernService) loadBooking(ctx context.Context, principal model.Principal, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	reservation, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Booking", id)
		case errors.Is(err, bookingserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, s.storeError(err, "Failed to retrieve booking")
	}
	if reservation.UserID == principal.UserID && principal.UserID != "" {
		return reservation, nil
	}
	if err := s.authorizeOwner(ctx, principal, reservation.PropertyID); err != nil {
		return nil, err
	}
	return reservation, nil
}

func (s *concernService) catalog(ctx context.Context, propertyID string) (*model.RoomCatalog, error) {
	catalog, err := s.catalogs.FindByProperty(ctx, propertyID)
	if err != nil {
		if errors.Is(err, catalogrepo.ErrCatalogNotFound) {
			return nil, apperrors.NotFound("Room configuration")
		}
		return nil, s.storeError(err, "Failed to load room configuration")
	}
	return catalog, nil
}

func (s *concernService) load(ctx context.Context, id string) (*model.Concern, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Concern ID cannot be empty")
	}
	concern, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeError(s.findError(err, id), "Failed to retrieve concern")
	}
	return concern, nil
}

func (s *concernService) findError(err error, id string) error {
	switch {
	case errors.Is(err, concernserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Concern", id)
	case errors.Is(err, concernserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid concern ID format")
	default:
		return err
	}
}

func (s *concernService) authorizeOwner(ctx context.Context, principal model.Principal, propertyID string) error {
	if principal.IsAdmin() {
		return nil
	}
	if !principal.IsClient() {
		return apperrors.Forbidden("Only the property owner can perform this action")
	}
	property, err := s.properties.FindByID(ctx, propertyID)
	if err != nil && !errors.Is(err, catalogrepo.ErrPropertyNotFound) {
		return s.storeError(err, "Failed to load property")
	}
	if !principal.OwnsProperty(property) {
		return apperrors.Forbidden("You do not own this property")
	}
	return nil
}

func (s *concernService) validate(err error, message string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Validation(message, map[string]any{"error": err.Error()})
	}
	missing, invalid := verrs.MissingFields(), verrs.Invalid()
	if len(missing) == 0 {
		return apperrors.Validation(message, map[string]any{"errors": invalid})
	}
	appErr := apperrors.MissingFields(missing)
	if len(invalid) > 0 {
		appErr = appErr.WithDetails(map[string]any{"errors": invalid})
	}
	return appErr
}

func (s *concernService) storeError(err error, message string) error {
	if apperrors.IsAppError(err) {
		return err
	}
	if mongotx.IsStoreUnavailable(err) {
		return apperrors.StoreUnavailable(err)
	}
	return apperrors.Internal(message, err)
}
