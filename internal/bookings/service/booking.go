package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bookingserrors "bedbook/internal/bookings/errors"
	"bedbook/internal/bookings/events"
	"bedbook/internal/bookings/repository"
	"bedbook/internal/bookings/validator"
	catalogrepo "bedbook/internal/catalog/repository"
	"bedbook/pkg/bedid"
	"bedbook/pkg/config"
	mongotx "bedbook/pkg/db/mongo"
	apperrors "bedbook/pkg/errors"
	"bedbook/pkg/model"
	"bedbook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

type BookingService interface {
	ComputeAvailability(ctx context.Context, propertyID, startDate, endDate, roomType string) (*model.Availability, error)
	CheckAvailability(ctx context.Context, req *model.AvailabilityCheckRequest) (*model.AvailabilityCheck, error)

	Create(ctx context.Context, principal model.Principal, req *model.BookingRequest) (*model.Reservation, error)
	Approve(ctx context.Context, principal model.Principal, id string) (*model.Reservation, error)
	Reject(ctx context.Context, principal model.Principal, id, reason string) (*model.Reservation, error)
	Cancel(ctx context.Context, principal model.Principal, id string) (*model.Reservation, error)
	RecordPayment(ctx context.Context, event *model.PaymentEvent) (*model.Reservation, error)
	RecordClientPayment(ctx context.Context, principal model.Principal, event *model.PaymentEvent) (*model.Reservation, error)

	GetByID(ctx context.Context, principal model.Principal, id string) (*model.Reservation, error)
	ListForUser(ctx context.Context, principal model.Principal) ([]*model.Reservation, error)
	ListForClient(ctx context.Context, principal model.Principal) ([]*model.Reservation, error)
	GetAll(ctx context.Context, principal model.Principal, limit int, offset int64) ([]*model.Reservation, int64, error)
}

// CatalogSource groups the read-only collaborators owned by the property
// side of the system.
type CatalogSource struct {
	Catalogs   catalogrepo.CatalogRepository
	Properties catalogrepo.PropertyRepository
	Users      catalogrepo.UserRepository
}

type bookingService struct {
	repo      repository.BookingRepository
	locks     repository.BedLockRepository
	source    CatalogSource
	view      CatalogSource
	publisher events.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
}

// NewBookingService wires the booking engine. source is read on the commit
// path; view backs the availability read path and may be cached.
func NewBookingService(
	repo repository.BookingRepository,
	locks repository.BedLockRepository,
	source CatalogSource,
	view CatalogSource,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	if view.Catalogs == nil {
		view.Catalogs = source.Catalogs
	}
	if view.Properties == nil {
		view.Properties = source.Properties
	}
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &bookingService{
		repo:      repo,
		locks:     locks,
		source:    source,
		view:      view,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, principal model.Principal, req *model.BookingRequest) (*model.Reservation, error) {
	if principal.UserID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	s.sanitize(req)
	if err := s.validate(s.validator.Validate(req), "Booking validation failed"); err != nil {
		return nil, err
	}

	moveIn, moveOut, err := resolveStay(req)
	if err != nil {
		return nil, err
	}

	var (
		property *model.Property
		user     *model.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		property, err = s.source.Properties.FindByID(gctx, req.PropertyID)
		if errors.Is(err, catalogrepo.ErrPropertyNotFound) {
			return apperrors.NotAvailable("Property not available for booking.")
		}
		return err
	})
	g.Go(func() error {
		var err error
		user, err = s.source.Users.FindByID(gctx, principal.UserID)
		if errors.Is(err, catalogrepo.ErrUserNotFound) {
			return apperrors.InvalidUser("User or clientId not found.")
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.storeError(err, "Failed to load property or user")
	}
	if !property.IsBookable() {
		return nil, apperrors.NotAvailable("Property not available for booking.")
	}
	if user.ClientID == "" {
		return nil, apperrors.InvalidUser("User or clientId not found.")
	}

	txCtx, cancel := context.WithTimeout(ctx, s.cfg.TransactionTimeout)
	defer cancel()

	var created *model.Reservation
	err = s.repo.ExecuteTransaction(txCtx, func(sessCtx mongo.SessionContext) error {
		// Re-run from scratch on every driver retry.
		created = nil

		catalog, err := s.source.Catalogs.FindByProperty(sessCtx, req.PropertyID)
		if err != nil {
			if errors.Is(err, catalogrepo.ErrCatalogNotFound) {
				return apperrors.NotFound("Room configuration")
			}
			return err
		}
		roomType, ok := catalog.RoomType(req.RoomType)
		if !ok {
			return apperrors.RoomTypeNotFound(req.RoomType)
		}

		// A lone token that cannot be parsed fails the request; among several
		// it is reported with the other unavailable beds.
		if len(req.SelectedRooms) == 1 {
			if _, err := bedid.Parse(req.SelectedRooms[0]); err != nil {
				return apperrors.MalformedIdentifier(req.SelectedRooms[0])
			}
		}

		beds, unavailable := resolveTokens(catalog, req.SelectedRooms)
		if ids := identifiers(beds); len(ids) > 0 {
			if err := s.locks.Touch(sessCtx, req.PropertyID, ids); err != nil {
				return err
			}
			held, err := s.repo.FindOverlapping(sessCtx, repository.OverlapQuery{
				PropertyID:       req.PropertyID,
				Start:            moveIn,
				End:              moveOut,
				ExcludedStatuses: repository.CommitExcludedStatuses,
				BedIdentifiers:   ids,
			})
			if err != nil {
				return err
			}
			markHeld(beds, held, unavailable)
		}
		if len(unavailable) > 0 {
			return apperrors.BedsUnavailable(unavailableTokens(req.SelectedRooms, unavailable))
		}

		pricing := computePricing(req, roomType, len(beds), moveIn, moveOut)
		reservation := newReservation(principal, user, req, roomType, beds, moveIn, moveOut, pricing)
		if err := s.repo.Create(sessCtx, reservation); err != nil {
			return err
		}
		created = reservation
		return nil
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeConflict) {
			s.cfg.Log.Info("Booking conflict", "property_id", req.PropertyID, "details", apperrors.AsAppError(err).Details)
		} else if !apperrors.IsAppError(err) {
			s.cfg.Log.Error("Failed to create booking", "property_id", req.PropertyID, "error", err)
		}
		return nil, s.storeError(err, "Failed to create booking")
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", created.ID,
		"property_id", created.PropertyID,
		"beds", len(created.RoomDetails),
		"status", created.Status,
	)
	s.publish(ctx, events.BookingCreated, created)
	return created, nil
}

func (s *bookingService) Approve(ctx context.Context, principal model.Principal, id string) (*model.Reservation, error) {
	reservation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(ctx, principal, reservation); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	updated, err := s.transition(ctx, id, []model.BookingStatus{model.StatusPending}, model.StatusApproved, repository.TransitionFields{
		ApprovedBy: principal.UserID,
		ApprovedAt: &now,
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking approved", "id", id, "approved_by", principal.UserID)
	s.publish(ctx, events.BookingApproved, updated)
	return updated, nil
}

func (s *bookingService) Reject(ctx context.Context, principal model.Principal, id, reason string) (*model.Reservation, error) {
	req := &model.RejectRequest{Reason: reason}
	if err := s.validate(s.validator.ValidateReject(req), "Rejection reason is required"); err != nil {
		return nil, err
	}

	reservation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(ctx, principal, reservation); err != nil {
		return nil, err
	}

	from := []model.BookingStatus{model.StatusPending, model.StatusApproved}
	updated, err := s.transition(ctx, id, from, model.StatusRejected, repository.TransitionFields{
		RejectedBy:      principal.UserID,
		RejectionReason: req.Reason,
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking rejected", "id", id, "rejected_by", principal.UserID)
	s.publish(ctx, events.BookingRejected, updated)
	return updated, nil
}

func (s *bookingService) Cancel(ctx context.Context, principal model.Principal, id string) (*model.Reservation, error) {
	reservation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.UserID != principal.UserID {
		if err := s.authorizeOwner(ctx, principal, reservation); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	from := model.Predecessors(model.StatusCancelled)
	updated, err := s.transition(ctx, id, from, model.StatusCancelled, repository.TransitionFields{
		CancelledAt:   &now,
		PaymentStatus: model.PaymentRefundPending,
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking cancelled", "id", id, "cancelled_by", principal.UserID)
	s.publish(ctx, events.BookingCancelled, updated)
	return updated, nil
}

// RecordPayment appends a ledger entry on behalf of the payment provider. A
// payment that settles the total due confirms a pending or approved booking.
func (s *bookingService) RecordPayment(ctx context.Context, event *model.PaymentEvent) (*model.Reservation, error) {
	if err := s.validate(s.validator.ValidatePayment(event), "Payment validation failed"); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, s.cfg.TransactionTimeout)
	defer cancel()

	var updated *model.Reservation
	err := s.repo.ExecuteTransaction(txCtx, func(sessCtx mongo.SessionContext) error {
		updated = nil

		reservation, err := s.repo.FindByID(sessCtx, event.BookingID)
		if err != nil {
			return s.findError(err, event.BookingID)
		}
		switch reservation.Status {
		case model.StatusCancelled, model.StatusRejected:
			return apperrors.InvalidTransition(
				fmt.Sprintf("Cannot record a payment on a %s booking", reservation.Status),
				string(reservation.Status),
			)
		}

		previous := reservation.Status
		reservation.ApplyPayment(model.Payment{
			Date:          time.Now().UTC().Truncate(time.Millisecond),
			Amount:        event.Amount,
			Method:        event.Method,
			TransactionID: event.TransactionID,
			Status:        event.Status,
			Description:   event.Description,
		})
		if reservation.PaymentInfo.PaymentStatus == model.PaymentCompleted &&
			(previous == model.StatusPending || previous == model.StatusApproved) {
			reservation.Status = model.StatusConfirmed
		}

		if err := s.repo.SavePayments(sessCtx, reservation, []model.BookingStatus{previous}); err != nil {
			if errors.Is(err, bookingserrors.ErrStatusConflict) {
				return apperrors.Conflict("Booking changed while recording the payment")
			}
			return err
		}
		updated = reservation
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Failed to record payment", "booking_id", event.BookingID, "error", err)
		return nil, s.storeError(err, "Failed to record payment")
	}

	s.cfg.Log.Info("Payment recorded",
		"booking_id", updated.ID,
		"amount", event.Amount,
		"payment_status", updated.PaymentInfo.PaymentStatus,
		"outstanding", updated.OutstandingAmount,
	)
	s.publish(ctx, events.BookingPaymentRecorded, updated)
	return updated, nil
}

// RecordClientPayment records an offline payment entered by the owning
// client or an admin.
func (s *bookingService) RecordClientPayment(ctx context.Context, principal model.Principal, event *model.PaymentEvent) (*model.Reservation, error) {
	reservation, err := s.load(ctx, event.BookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(ctx, principal, reservation); err != nil {
		return nil, err
	}
	return s.RecordPayment(ctx, event)
}

func (s *bookingService) GetByID(ctx context.Context, principal model.Principal, id string) (*model.Reservation, error) {
	reservation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.UserID == principal.UserID && principal.UserID != "" {
		return reservation, nil
	}
	if err := s.authorizeOwner(ctx, principal, reservation); err != nil {
		return nil, err
	}
	return reservation, nil
}

func (s *bookingService) ListForUser(ctx context.Context, principal model.Principal) ([]*model.Reservation, error) {
	if principal.UserID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	reservations, err := s.repo.FindByUser(ctx, principal.UserID)
	if err != nil {
		s.cfg.Log.Error("Failed to list user bookings", "user_id", principal.UserID, "error", err)
		return nil, s.storeError(err, "Failed to retrieve bookings")
	}
	return reservations, nil
}

func (s *bookingService) ListForClient(ctx context.Context, principal model.Principal) ([]*model.Reservation, error) {
	if !principal.IsClient() || principal.ClientID == "" {
		return nil, apperrors.Forbidden("Only property owners can list property bookings")
	}

	propertyIDs, err := s.source.Properties.FindIDsByClient(ctx, principal.ClientID)
	if err != nil {
		return nil, s.storeError(err, "Failed to retrieve properties")
	}

	reservations, err := s.repo.FindByProperties(ctx, propertyIDs)
	if err != nil {
		s.cfg.Log.Error("Failed to list property bookings", "client_id", principal.ClientID, "error", err)
		return nil, s.storeError(err, "Failed to retrieve bookings")
	}
	return reservations, nil
}

func (s *bookingService) GetAll(ctx context.Context, principal model.Principal, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if !principal.IsAdmin() {
		return nil, 0, apperrors.Forbidden("Admin access required")
	}

	var (
		count        int64
		reservations []*model.Reservation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.repo.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		reservations, err = s.repo.FindAll(gctx, limit, offset)
		return err
	})
	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("Failed to list bookings", "limit", limit, "offset", offset, "error", err)
		return nil, 0, s.storeError(err, "Failed to retrieve bookings")
	}

	return reservations, count, nil
}

// --- Helpers ---

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.PropertyID = sanitizer.TrimAndNormalize(req.PropertyID)
	req.RoomType = sanitizer.NormalizeTag(req.RoomType)
	req.SelectedRooms = sanitizer.NormalizeTokens(req.SelectedRooms)
	req.Customer.Name = sanitizer.NormalizeName(req.Customer.Name)
	req.Customer.Mobile = sanitizer.NormalizeMobile(req.Customer.Mobile)
	req.Customer.Email = sanitizer.NormalizeEmail(req.Customer.Email)
	if req.DurationType == "" {
		req.DurationType = model.DurationMonthly
	}
}

// validate turns validator output into one 400 listing every missing key
// and every invalid value.
func (s *bookingService) validate(err error, message string) error {
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

func (s *bookingService) load(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeError(s.findError(err, id), "Failed to retrieve booking")
	}
	return reservation, nil
}

func (s *bookingService) findError(err error, id string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	default:
		return err
	}
}

// storeError keeps AppErrors, maps unreachable-store causes to
// StoreUnavailable and everything else to Internal.
func (s *bookingService) storeError(err error, message string) error {
	if apperrors.IsAppError(err) {
		return err
	}
	if mongotx.IsStoreUnavailable(err) {
		return apperrors.StoreUnavailable(err)
	}
	return apperrors.Internal(message, err)
}

// authorizeOwner admits admins and the client owning the reservation's
// property.
func (s *bookingService) authorizeOwner(ctx context.Context, principal model.Principal, reservation *model.Reservation) error {
	if principal.IsAdmin() {
		return nil
	}
	if !principal.IsClient() {
		return apperrors.Forbidden("Only the property owner can perform this action")
	}

	property, err := s.source.Properties.FindByID(ctx, reservation.PropertyID)
	if err != nil && !errors.Is(err, catalogrepo.ErrPropertyNotFound) {
		return s.storeError(err, "Failed to load property")
	}
	if !principal.OwnsProperty(property) {
		return apperrors.Forbidden("You do not own this property")
	}
	return nil
}

// transition applies a guarded status change. When the guard misses, the
// reservation is re-read to report why.
func (s *bookingService) transition(
	ctx context.Context,
	id string,
	from []model.BookingStatus,
	to model.BookingStatus,
	fields repository.TransitionFields,
) (*model.Reservation, error) {
	updated, err := s.repo.Transition(ctx, id, from, to, fields)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, bookingserrors.ErrStatusConflict) {
		return nil, s.storeError(s.findError(err, id), "Failed to update booking")
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Cannot move booking from %s to %s", current.Status, to)
	if current.Status.IsTerminal() {
		msg = fmt.Sprintf("Booking is already %s", current.Status)
	}
	return nil, apperrors.InvalidTransition(msg, string(current.Status))
}

func (s *bookingService) publish(ctx context.Context, eventType string, reservation *model.Reservation) {
	if err := s.publisher.Publish(ctx, eventType, reservation); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"id", reservation.ID,
			"error", err,
		)
	}
}

// resolvedBed is a requested token matched to a catalog bed. index points
// back into the request's token list.
type resolvedBed struct {
	index  int
	detail model.RoomDetail
}

// resolveTokens matches each token to a catalog bed. Tokens that do not
// parse, name an unknown bed, carry the wrong sharing type or repeat an
// earlier token are marked unavailable by index.
func resolveTokens(catalog *model.RoomCatalog, tokens []string) ([]resolvedBed, map[int]bool) {
	var beds []resolvedBed
	unavailable := make(map[int]bool)
	seen := make(map[string]bool, len(tokens))

	for i, raw := range tokens {
		token, err := bedid.Parse(raw)
		if err != nil {
			unavailable[i] = true
			continue
		}
		loc, ok := bedid.Resolve(catalog, token.RoomNumber, token.BedLabel)
		if !ok {
			unavailable[i] = true
			continue
		}
		sharingType := catalog.InferRoomType(loc.BedCount)
		if !strings.EqualFold(token.SharingType, sharingType) {
			unavailable[i] = true
			continue
		}

		id := bedid.Canonical(sharingType, loc.RoomNumber, loc.BedLabel)
		if seen[id] {
			unavailable[i] = true
			continue
		}
		seen[id] = true

		beds = append(beds, resolvedBed{
			index: i,
			detail: model.RoomDetail{
				BedIdentifier: id,
				SharingType:   sharingType,
				Floor:         loc.Floor,
				RoomNumber:    loc.RoomNumber,
				BedLabel:      loc.BedLabel,
			},
		})
	}

	return beds, unavailable
}

func identifiers(beds []resolvedBed) []string {
	ids := make([]string, 0, len(beds))
	for _, b := range beds {
		ids = append(ids, b.detail.BedIdentifier)
	}
	return ids
}

// markHeld flags every resolved bed held by one of the overlapping
// reservations.
func markHeld(beds []resolvedBed, held []*model.Reservation, unavailable map[int]bool) {
	taken := make(map[string]bool)
	for _, r := range held {
		for _, d := range r.RoomDetails {
			taken[d.BedIdentifier] = true
		}
	}
	for _, b := range beds {
		if taken[b.detail.BedIdentifier] {
			unavailable[b.index] = true
		}
	}
}

// unavailableTokens lists flagged tokens as submitted, in request order.
func unavailableTokens(tokens []string, unavailable map[int]bool) []string {
	out := make([]string, 0, len(unavailable))
	for i, t := range tokens {
		if unavailable[i] {
			out = append(out, t)
		}
	}
	return out
}

func newReservation(
	principal model.Principal,
	user *model.User,
	req *model.BookingRequest,
	roomType model.RoomTypeConfig,
	beds []resolvedBed,
	moveIn, moveOut time.Time,
	pricing model.Pricing,
) *model.Reservation {
	details := make([]model.RoomDetail, 0, len(beds))
	for _, b := range beds {
		details = append(details, b.detail)
	}

	name := roomType.Label
	if name == "" {
		name = roomType.Type
	}

	r := &model.Reservation{
		UserID:     principal.UserID,
		ClientID:   user.ClientID,
		PropertyID: req.PropertyID,
		RoomType: model.RoomTypeSnapshot{
			Type:     roomType.Type,
			Name:     name,
			Capacity: roomType.Capacity,
		},
		RoomDetails:    details,
		MoveInDate:     moveIn,
		MoveOutDate:    moveOut,
		DurationType:   req.DurationType,
		DurationDays:   req.DurationDays,
		DurationMonths: req.DurationMonths,
		PersonCount:    req.PersonCount,
		Customer:       req.Customer,
		Pricing:        pricing,
		Payments:       []model.Payment{},
		Status:         model.StatusPending,
	}

	method := model.DefaultPaymentMethod
	var (
		transactionID string
		declared      model.PaymentStatus
	)
	if pi := req.PaymentInfo; pi != nil {
		declared = pi.PaymentStatus
		if pi.PaymentMethod != "" {
			method = pi.PaymentMethod
		}
		transactionID = pi.TransactionID
		if pi.AmountPaid > 0 {
			r.Payments = append(r.Payments, model.Payment{
				Date:          time.Now().UTC().Truncate(time.Millisecond),
				Amount:        model.RoundAmount(pi.AmountPaid),
				Method:        "online",
				TransactionID: pi.TransactionID,
				Status:        model.PaymentCompleted,
				Description:   "Paid at booking",
			})
			paidAt := r.Payments[0].Date
			r.PaymentInfo.PaymentDate = &paidAt
		}
	}

	// The payment summary derives from the ledger only. A completed payment at
	// booking time confirms the stay once money is actually on the ledger.
	r.RecomputeOutstanding()
	r.PaymentInfo.PaymentMethod = method
	r.PaymentInfo.TransactionID = transactionID
	if declared == model.PaymentCompleted && r.PaymentInfo.AmountPaid > 0 {
		r.Status = model.StatusConfirmed
	}

	return r
}
