package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "bedbook/internal/bookings/errors"
	"bedbook/pkg/config"
	mongotx "bedbook/pkg/db/mongo"
	"bedbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Reservations"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

// TransitionFields are stamped alongside a status change. Zero values are
// left untouched.
type TransitionFields struct {
	ApprovedBy      string
	ApprovedAt      *time.Time
	RejectedBy      string
	RejectionReason string
	CancelledAt     *time.Time
	PaymentStatus   model.PaymentStatus
}

type BookingRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindOverlapping(ctx context.Context, query OverlapQuery) ([]*model.Reservation, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Reservation, error)
	FindByProperties(ctx context.Context, propertyIDs []string) ([]*model.Reservation, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error)
	Count(ctx context.Context) (int64, error)
	Transition(ctx context.Context, id string, from []model.BookingStatus, to model.BookingStatus, fields TransitionFields) (*model.Reservation, error)
	SavePayments(ctx context.Context, reservation *model.Reservation, from []model.BookingStatus) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout bounds a single store call. A SessionContext is returned as is
// because wrapping it would detach the call from its transaction; the
// transaction carries its own deadline.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}

	return context.WithTimeout(ctx, timeout)
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *mongoBookingRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	reservation.CreatedAt = now
	reservation.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, reservation)
	if err != nil {
		return mongotx.Classify(err, "failed to create reservation")
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		reservation.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var reservation model.Reservation
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, mongotx.Classify(err, "failed to find reservation")
	}

	return &reservation, nil
}

func (r *mongoBookingRepository) FindOverlapping(ctx context.Context, query OverlapQuery) ([]*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "move_in_date", Value: 1}})
	return r.find(ctx, query.Filter(), opts)
}

func (r *mongoBookingRepository) FindByUser(ctx context.Context, userID string) ([]*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

func (r *mongoBookingRepository) FindByProperties(ctx context.Context, propertyIDs []string) ([]*model.Reservation, error) {
	if len(propertyIDs) == 0 {
		return []*model.Reservation{}, nil
	}

	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"property_id": bson.M{"$in": propertyIDs}}, opts)
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Reservation, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, mongotx.Classify(err, "failed to find reservations")
	}
	defer cursor.Close(ctx)

	reservations := []*model.Reservation{}
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, mongotx.Classify(err, "failed to decode reservations")
	}

	return reservations, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, mongotx.Classify(err, "failed to count reservations")
	}

	return count, nil
}

// Transition moves the reservation to `to` only while its stored status is
// one of `from`. A miss returns ErrStatusConflict; callers re-read to tell a
// missing reservation from a stale status.
func (r *mongoBookingRepository) Transition(
	ctx context.Context,
	id string,
	from []model.BookingStatus,
	to model.BookingStatus,
	fields TransitionFields,
) (*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{
		"booking_status": to,
		"updated_at":     time.Now().UTC().Truncate(time.Millisecond),
	}
	if fields.ApprovedBy != "" {
		set["approved_by"] = fields.ApprovedBy
	}
	if fields.ApprovedAt != nil {
		set["approved_at"] = *fields.ApprovedAt
	}
	if fields.RejectedBy != "" {
		set["rejected_by"] = fields.RejectedBy
	}
	if fields.RejectionReason != "" {
		set["rejection_reason"] = fields.RejectionReason
	}
	if fields.CancelledAt != nil {
		set["cancelled_at"] = *fields.CancelledAt
	}
	if fields.PaymentStatus != "" {
		set["payment_info.payment_status"] = fields.PaymentStatus
	}

	filter := bson.M{
		"_id":            oid,
		"booking_status": bson.M{"$in": from},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated model.Reservation
	err = r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrStatusConflict
		}
		return nil, mongotx.Classify(err, "failed to transition reservation")
	}

	return &updated, nil
}

// SavePayments persists the ledger, the derived payment fields and the
// status of reservation, guarded by its stored status being one of from.
func (r *mongoBookingRepository) SavePayments(ctx context.Context, reservation *model.Reservation, from []model.BookingStatus) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(reservation.ID)
	if err != nil {
		return err
	}

	reservation.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	filter := bson.M{
		"_id":            oid,
		"booking_status": bson.M{"$in": from},
	}
	update := bson.M{
		"$set": bson.M{
			"payments":           reservation.Payments,
			"payment_info":       reservation.PaymentInfo,
			"outstanding_amount": reservation.OutstandingAmount,
			"booking_status":     reservation.Status,
			"updated_at":         reservation.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return mongotx.Classify(err, "failed to save payments")
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrStatusConflict
	}

	return nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
