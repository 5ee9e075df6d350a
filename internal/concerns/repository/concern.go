package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	concernserrors "bedbook/internal/concerns/errors"
	"bedbook/pkg/config"
	mongotx "bedbook/pkg/db/mongo"
	"bedbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Concerns"

// StatusFields are stamped with a status change. Zero values are left
// untouched.
type StatusFields struct {
	AdminResponse string
	HandledBy     string
	HandledAt     *time.Time
	CompletedAt   *time.Time
}

type ConcernRepository interface {
	Create(ctx context.Context, concern *model.Concern) error
	FindByID(ctx context.Context, id string) (*model.Concern, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Concern, error)
	FindByProperties(ctx context.Context, propertyIDs []string) ([]*model.Concern, error)
	UpdateStatus(ctx context.Context, id string, from []model.ConcernStatus, to model.ConcernStatus, fields StatusFields) (*model.Concern, error)
	AddNote(ctx context.Context, id string, note model.InternalNote) (*model.Concern, error)
}

type mongoConcernRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoConcernRepository(cfg *config.Config) ConcernRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoConcernRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", concernserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (r *mongoConcernRepository) Create(ctx context.Context, concern *model.Concern) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	concern.CreatedAt = now()
	concern.UpdatedAt = concern.CreatedAt
	if concern.InternalNotes == nil {
		concern.InternalNotes = []model.InternalNote{}
	}

	result, err := r.collection.InsertOne(ctx, concern)
	if err != nil {
		return mongotx.Classify(err, "failed to create concern")
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		concern.ID = oid.Hex()
	}
	return nil
}

func (r *mongoConcernRepository) FindByID(ctx context.Context, id string) (*model.Concern, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var concern model.Concern
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&concern); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, concernserrors.ErrNotFound
		}
		return nil, mongotx.Classify(err, "failed to find concern")
	}
	return &concern, nil
}

func (r *mongoConcernRepository) FindByUser(ctx context.Context, userID string) ([]*model.Concern, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

func (r *mongoConcernRepository) FindByProperties(ctx context.Context, propertyIDs []string) ([]*model.Concern, error) {
	if len(propertyIDs) == 0 {
		return []*model.Concern{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"property_id": bson.M{"$in": propertyIDs}}, opts)
}

func (r *mongoConcernRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Concern, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, mongotx.Classify(err, "failed to find concerns")
	}
	defer cursor.Close(ctx)

	concerns := []*model.Concern{}
	if err := cursor.All(ctx, &concerns); err != nil {
		return nil, mongotx.Classify(err, "failed to decode concerns")
	}
	return concerns, nil
}

// UpdateStatus moves the concern to `to` only while its stored status is one
// of `from`. A miss returns ErrStatusConflict.
func (r *mongoConcernRepository) UpdateStatus(
	ctx context.Context,
	id string,
	from []model.ConcernStatus,
	to model.ConcernStatus,
	fields StatusFields,
) (*model.Concern, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"status": to, "updated_at": now()}
	if fields.AdminResponse != "" {
		set["admin_response"] = fields.AdminResponse
	}
	if fields.HandledBy != "" {
		set["handled_by"] = fields.HandledBy
	}
	if fields.HandledAt != nil {
		set["handled_at"] = *fields.HandledAt
	}
	if fields.CompletedAt != nil {
		set["completed_at"] = *fields.CompletedAt
	}

	filter := bson.M{"_id": oid, "status": bson.M{"$in": from}}
	return r.findOneAndUpdate(ctx, filter, bson.M{"$set": set}, concernserrors.ErrStatusConflict)
}

func (r *mongoConcernRepository) AddNote(ctx context.Context, id string, note model.InternalNote) (*model.Concern, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$push": bson.M{"internal_notes": note},
		"$set":  bson.M{"updated_at": now()},
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": oid}, update, concernserrors.ErrNotFound)
}

func (r *mongoConcernRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M, miss error) (*model.Concern, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated model.Concern
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, miss
		}
		return nil, mongotx.Classify(err, "failed to update concern")
	}
	return &updated, nil
}
