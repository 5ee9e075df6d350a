package repository

import (
	"context"
	"slices"
	"time"

	"bedbook/pkg/config"
	mongotx "bedbook/pkg/db/mongo"
	"bedbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const BedLockCollectionName = "Bed_locks"

// BedLockRepository serializes commits per bed. Touch must run inside the
// booking transaction: two transactions touching the same lock document
// write-conflict and the driver retries the loser.
type BedLockRepository interface {
	Touch(ctx context.Context, propertyID string, bedIdentifiers []string) error
}

type mongoBedLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewBedLockRepository(cfg *config.Config) BedLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBedLockRepository{
		cfg:        cfg,
		collection: db.Collection(BedLockCollectionName),
	}
}

func (r *mongoBedLockRepository) Touch(ctx context.Context, propertyID string, bedIdentifiers []string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	// Sorted so concurrent multi-bed commits take locks in the same order.
	ids := slices.Clone(bedIdentifiers)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	now := time.Now().UTC().Truncate(time.Millisecond)
	opts := options.Update().SetUpsert(true)

	for _, bed := range ids {
		update := bson.M{
			"$inc": bson.M{"version": 1},
			"$set": bson.M{"updated_at": now},
			"$setOnInsert": bson.M{
				"property_id":    propertyID,
				"bed_identifier": bed,
			},
		}
		if _, err := r.collection.UpdateByID(ctx, model.BedLockID(propertyID, bed), update, opts); err != nil {
			return mongotx.Classify(err, "failed to lock bed "+bed)
		}
	}

	return nil
}
