package main

import (
	"bedbook/internal/bookings/events"
	"bedbook/internal/bookings/handler"
	"bedbook/internal/bookings/repository"
	"bedbook/internal/bookings/service"
	"bedbook/internal/bookings/validator"
	catalogrepo "bedbook/internal/catalog/repository"
	concernhandler "bedbook/internal/concerns/handler"
	concernrepo "bedbook/internal/concerns/repository"
	concernservice "bedbook/internal/concerns/service"
	concernvalidator "bedbook/internal/concerns/validator"
	"bedbook/pkg/app"
	"bedbook/pkg/config"
	httputil "bedbook/pkg/http"
	"bedbook/pkg/kafka"
	kafka_config "bedbook/pkg/kafka/config"
	kafka_middleware "bedbook/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	httputil.ExposeErrorDetail(cfg.IsDevelopment())

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg)

	publisher := initPublisher(cfg, serverApp)
	bookingService, concernService := initServices(cfg, publisher)

	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, cfg.Log),
		concernhandler.NewConcernHandler(concernService, cfg.Log),
	)
	serverApp.Run()
}

func initPublisher(cfg *config.Config, serverApp *app.Application) events.Publisher {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Booking events disabled")
		return events.NewNoopPublisher()
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create booking events producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	serverApp.OnShutdown("booking-events-producer", producer)

	return events.NewKafkaPublisher(producer, ServiceName)
}

// initServices reads the catalog through the cache for availability views
// and straight from Mongo on the commit path. Concerns share the booking
// store and the cached catalog view.
func initServices(cfg *config.Config, publisher events.Publisher) (service.BookingService, concernservice.ConcernService) {
	catalogs := catalogrepo.NewMongoCatalogRepository(cfg)
	properties := catalogrepo.NewMongoPropertyRepository(cfg)

	source := service.CatalogSource{
		Catalogs:   catalogs,
		Properties: properties,
		Users:      catalogrepo.NewMongoUserRepository(cfg),
	}
	view := source
	if cfg.Client.Redis != nil {
		view.Catalogs = catalogrepo.NewCachedCatalogRepository(catalogs, cfg.Client.Redis, cfg.CatalogCacheTTL, cfg.Log)
		view.Properties = catalogrepo.NewCachedPropertyRepository(properties, cfg.Client.Redis, cfg.CatalogCacheTTL, cfg.Log)
	}

	bookings := repository.NewMongoBookingRepository(cfg)
	bookingService := service.NewBookingService(
		bookings,
		repository.NewBedLockRepository(cfg),
		source,
		view,
		publisher,
		validator.NewBookingValidator(cfg.Log),
		cfg,
	)

	concernService := concernservice.NewConcernService(
		concernrepo.NewMongoConcernRepository(cfg),
		bookings,
		view.Catalogs,
		view.Properties,
		concernvalidator.NewConcernValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService, concernService
}
