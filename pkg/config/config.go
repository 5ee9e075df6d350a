package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"bedbook/pkg/client"
	"bedbook/pkg/logger"

	"github.com/joho/godotenv"
)

var (
	mongoSchemeRegex     = regexp.MustCompile(`^mongodb(\+srv)?://`)
	mongoCredentialRegex = regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	redisCredentialRegex = regexp.MustCompile(`(rediss?://)[^@]*@`)
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisURL        string
	CatalogCacheTTL time.Duration

	Port        string
	Environment string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	TransactionTimeout time.Duration
	IdleTimeout        time.Duration
	ShutdownTimeout    time.Duration

	EventsEnabled         bool
	BookingEventsTopic    string
	BookingEventsDLQTopic string
	PaymentEventsTopic    string
	PaymentEventsGroup    string
	PaymentEventsDLQTopic string
	PaymentWebhookSecret  string

	Log    *logger.Logger
	Client *client.Client
}

// Load reads an optional .env file, then the process environment. Invalid
// configuration is fatal.
func Load(serviceName string) *Config {
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		RedisURL:        getEnvStr(EnvRedisURL, ""),
		CatalogCacheTTL: getEnvDuration(EnvCatalogCacheTTL, DefaultCatalogCacheTTL),

		Port:        getEnvStr(EnvPort, DefaultPort),
		Environment: getEnvStr(EnvEnvironment, DefaultEnvironment),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:        getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:       getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		TransactionTimeout: getEnvDuration(EnvTransactionTimeout, DefaultTransactionTimeout),
		IdleTimeout:        getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout:    getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		EventsEnabled:         getEnvBool(EnvEventsEnabled, DefaultEventsEnabled),
		BookingEventsTopic:    getEnvStr(EnvBookingEventsTopic, DefaultBookingEventsTopic),
		BookingEventsDLQTopic: getEnvStr(EnvBookingEventsDLQTopic, DefaultBookingEventsDLQTopic),
		PaymentEventsTopic:    getEnvStr(EnvPaymentEventsTopic, DefaultPaymentEventsTopic),
		PaymentEventsGroup:    getEnvStr(EnvPaymentEventsGroup, DefaultPaymentEventsGroup),
		PaymentEventsDLQTopic: getEnvStr(EnvPaymentEventsDLQTopic, DefaultPaymentEventsDLQTopic),
		PaymentWebhookSecret:  getEnvStr(EnvPaymentWebhookSecret, ""),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    getEnvStr(EnvLogFormat, DefaultLogFormat),
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects the catalog cache when REDIS_URL is set.
func (cfg *Config) SetRedis() {
	if cfg.RedisURL == "" {
		cfg.Log.Info("REDIS_URL not set, catalog cache disabled")
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisURL, cfg.MongoConnTimeout)
}

func (cfg *Config) IsDevelopment() bool {
	return cfg.Environment == EnvironmentDevelopment
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.Environment != EnvironmentDevelopment && cfg.Environment != EnvironmentProduction {
		errors = append(errors, fmt.Sprintf("Environment must be %q or %q, got: %s", EnvironmentDevelopment, EnvironmentProduction, cfg.Environment))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !mongoSchemeRegex.MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"CatalogCacheTTL", cfg.CatalogCacheTTL},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"TransactionTimeout", cfg.TransactionTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.EventsEnabled && cfg.BookingEventsTopic == "" {
		errors = append(errors, "BookingEventsTopic cannot be empty when events are enabled")
	}
	if cfg.PaymentEventsTopic == "" || cfg.PaymentEventsGroup == "" {
		errors = append(errors, "PaymentEventsTopic and PaymentEventsGroup cannot be empty")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"redis_url", redactRedisURL(cfg.RedisURL),
		"catalog_cache_ttl", cfg.CatalogCacheTTL,
		"port", cfg.Port,
		"environment", cfg.Environment,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"transaction_timeout", cfg.TransactionTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"events_enabled", cfg.EventsEnabled,
		"booking_events_topic", cfg.BookingEventsTopic,
		"payment_events_topic", cfg.PaymentEventsTopic,
		"payment_events_group", cfg.PaymentEventsGroup,
		"payment_webhook_secret_set", cfg.PaymentWebhookSecret != "",
	)
}

func redactMongoURI(uri string) string {
	return mongoCredentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func redactRedisURL(uri string) string {
	return redisCredentialRegex.ReplaceAllString(uri, "${1}***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}
