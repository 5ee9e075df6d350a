package main

import (
	"context"
	"time"

	mongoMigration "bedbook/internal/migrations/mongo"
	"bedbook/pkg/config"
)

const (
	JobName    = "mongo-migration"
	jobTimeout   = 120 * time.Second
)

func main() {
	cfg := config.Load(JobName)
	cfg.SetMongo()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	cfg.Log.Info("Starting Mongo migration job")
	err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log)
	cfg.Client.GracefulShutdown(cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully")
}
