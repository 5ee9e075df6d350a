package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "bedbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultCatalogCacheTTL = 5 * time.Minute

	DefaultPort        = "8080"
	DefaultEnvironment = EnvironmentProduction
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout        = 15 * time.Second
	DefaultWriteTimeout       = 15 * time.Second
	DefaultTransactionTimeout = 20 * time.Second
	DefaultIdleTimeout        = 60 * time.Second
	DefaultShutdownTimeout    = 30 * time.Second

	DefaultEventsEnabled         = false
	DefaultBookingEventsTopic    = "booking-events"
	DefaultBookingEventsDLQTopic = "booking-events-dlq"
	DefaultPaymentEventsTopic    = "payment-events"
	DefaultPaymentEventsGroup    = "bedbook-payments"
	DefaultPaymentEventsDLQTopic = "payment-events-dlq"

	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)
