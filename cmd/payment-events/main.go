package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"bedbook/internal/bookings/events"
	"bedbook/internal/bookings/repository"
	"bedbook/internal/bookings/service"
	"bedbook/internal/bookings/validator"
	catalogrepo "bedbook/internal/catalog/repository"
	"bedbook/pkg/config"
	"bedbook/pkg/contracts"
	"bedbook/pkg/kafka"
	kafka_config "bedbook/pkg/kafka/config"
	kafka_middleware "bedbook/pkg/kafka/middleware"
)

const ServiceName = "payment-events"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.Client.GracefulShutdown(cfg.Log)

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	publisher := events.NewNoopPublisher()
	if cfg.EventsEnabled {
		producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to create booking events producer", "error", err)
		}
		defer producer.Close()
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		publisher = events.NewKafkaPublisher(producer, ServiceName)
	}

	bookingService := initService(cfg, publisher)

	counters := &kafka_middleware.Counters{}
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.PaymentEventsTopic,
		cfg.PaymentEventsGroup,
		cfg.PaymentEventsDLQTopic,
		events.NewPaymentEventHandler(bookingService, cfg.Log),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create payment events consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(counters.ConsumerMiddleware())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting payment events consumer",
		"topic", cfg.PaymentEventsTopic,
		"group_id", cfg.PaymentEventsGroup,
	)
	run(ctx, cfg, consumer)

	snapshot := counters.Snapshot()
	cfg.Log.Info("Payment events consumer stopped",
		"succeeded", snapshot.Succeeded,
		"failed", snapshot.Failed,
		"avg_duration", snapshot.AvgDuration,
	)
}

func run(ctx context.Context, cfg *config.Config, runner contracts.Runner) {
	if err := runner.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}
	if err := runner.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
}

func initService(cfg *config.Config, publisher events.Publisher) service.BookingService {
	source := service.CatalogSource{
		Catalogs:   catalogrepo.NewMongoCatalogRepository(cfg),
		Properties: catalogrepo.NewMongoPropertyRepository(cfg),
		Users:      catalogrepo.NewMongoUserRepository(cfg),
	}

	return service.NewBookingService(
		repository.NewMongoBookingRepository(cfg),
		repository.NewBedLockRepository(cfg),
		source,
		service.CatalogSource{},
		publisher,
		validator.NewBookingValidator(cfg.Log),
		cfg,
	)
}
