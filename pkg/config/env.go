package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisURL        = "REDIS_URL"
	EnvCatalogCacheTTL = "CATALOG_CACHE_TTL"

	EnvPort        = "PORT"
	EnvEnvironment = "APP_ENV"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFormat   = "LOG_FORMAT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout        = "READ_TIMEOUT"
	EnvWriteTimeout       = "WRITE_TIMEOUT"
	EnvTransactionTimeout = "TRANSACTION_TIMEOUT"
	EnvIdleTimeout        = "IDLE_TIMEOUT"
	EnvShutdownTimeout    = "SHUTDOWN_TIMEOUT"

	EnvEventsEnabled         = "EVENTS_ENABLED"
	EnvBookingEventsTopic    = "BOOKING_EVENTS_TOPIC"
	EnvBookingEventsDLQTopic = "BOOKING_EVENTS_DLQ_TOPIC"
	EnvPaymentEventsTopic    = "PAYMENT_EVENTS_TOPIC"
	EnvPaymentEventsGroup    = "PAYMENT_EVENTS_GROUP"
	EnvPaymentEventsDLQTopic = "PAYMENT_EVENTS_DLQ_TOPIC"
	EnvPaymentWebhookSecret  = "PAYMENT_WEBHOOK_SECRET"
)
