// Package testutil holds helpers for tests that run against a real MongoDB.
// Transactions need a replica set; point TEST_MONGO_URI at one.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"bedbook/pkg/client"
	"bedbook/pkg/config"
	"bedbook/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultDatabaseName = "bedbook_test"
	ConnectionTimeout   = 10 * time.Second
)

type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
}

// NewMongoHelper connects using TEST_MONGO_URI and TEST_DB_NAME. The test is
// skipped when the server cannot be reached.
func NewMongoHelper(t *testing.T) *MongoHelper {
	t.Helper()

	mongoURI := getEnv("TEST_MONGO_URI", DefaultMongoURI)
	dbName := getEnv("TEST_DB_NAME", DefaultDatabaseName)

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Skipf("MongoDB unavailable: %v", err)
	}
	if err := mc.Ping(ctx, nil); err != nil {
		t.Skipf("MongoDB unavailable: %v", err)
	}

	h := &MongoHelper{
		Client:   mc,
		Database: mc.Database(dbName),
		DBName:   dbName,
	}
	t.Cleanup(func() { h.Close(t) })
	return h
}

// Config returns a service configuration bound to the helper's database.
func (m *MongoHelper) Config() *config.Config {
	return &config.Config{
		MongoDatabaseName:  m.DBName,
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
		TransactionTimeout: 10 * time.Second,
		Log:                logger.Discard(),
		Client:             &client.Client{Mongo: m.Client},
	}
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

// CleanCollections empties the named collections, creating them when missing
// so later transactions do not have to.
func (m *MongoHelper) CleanCollections(t *testing.T, names ...string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	existing, err := m.Database.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		t.Fatalf("failed to list collections: %v", err)
	}
	present := make(map[string]bool, len(existing))
	for _, name := range existing {
		present[name] = true
	}

	for _, name := range names {
		if !present[name] {
			if err := m.Database.CreateCollection(ctx, name); err != nil {
				t.Fatalf("failed to create collection %s: %v", name, err)
			}
			continue
		}
		if _, err := m.Database.Collection(name).DeleteMany(ctx, bson.D{}); err != nil {
			t.Fatalf("failed to clean collection %s: %v", name, err)
		}
	}
}

// InsertDocuments seeds a collection owned by another service, such as
// properties or users.
func (m *MongoHelper) InsertDocuments(t *testing.T, collectionName string, docs ...any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := m.Database.Collection(collectionName).InsertMany(ctx, docs); err != nil {
		t.Fatalf("failed to seed %s: %v", collectionName, err)
	}
}

func (m *MongoHelper) CountDocuments(t *testing.T, collectionName string, filter any) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if filter == nil {
		filter = bson.D{}
	}
	count, err := m.Database.Collection(collectionName).CountDocuments(ctx, filter)
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collectionName, err)
	}
	return count
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
