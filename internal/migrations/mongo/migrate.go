package mongo

import (
	"context"
	"fmt"

	"bedbook/internal/migrations/mongo/validators"
	"bedbook/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ReservationsCollection = "Reservations"
	RoomsCollection        = "Rooms"
	BedLocksCollection     = "Bed_locks"
	ConcernsCollection     = "Concerns"
)

var (
	ReservationIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "booking_status", Value: 1}}},
		{Keys: bson.D{
			{Key: "room_details.bed_identifier", Value: 1},
			{Key: "move_in_date", Value: 1},
		}},
		{Keys: bson.D{{Key: "client_id", Value: 1}}},
		// Serves the overlap scan: property equality, then range on move-in.
		{Keys: bson.D{
			{Key: "property_id", Value: 1},
			{Key: "move_in_date", Value: 1},
			{Key: "move_out_date", Value: 1},
		}},
	}

	RoomIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "property_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	BedLockIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "property_id", Value: 1}}},
	}

	ConcernIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "booking_id", Value: 1}}},
		{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
)

type CollectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() map[string]CollectionDef {
	return map[string]CollectionDef{
		ReservationsCollection: {Indexes: ReservationIndexes, Validator: validators.ReservationValidator},
		RoomsCollection:        {Indexes: RoomIndexes, Validator: validators.RoomCatalogValidator},
		BedLocksCollection:     {Indexes: BedLockIndexes, Validator: validators.BedLockValidator},
		ConcernsCollection:     {Indexes: ConcernIndexes, Validator: validators.ConcernValidator},
	}
}

// RunMigration creates the booking and concern collections with their validators and
// indexes. It is safe to run repeatedly; existing validators are replaced.
func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for name, def := range Collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
