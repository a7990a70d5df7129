package main

import (
	availabilityhandler "mise/internal/availability/handler"
	availabilityrepo "mise/internal/availability/repository"
	availabilityservice "mise/internal/availability/service"
	availabilityvalidator "mise/internal/availability/validator"
	bookinghandler "mise/internal/bookings/handler"
	bookingrepo "mise/internal/bookings/repository"
	bookingservice "mise/internal/bookings/service"
	bookingvalidator "mise/internal/bookings/validator"
	"mise/internal/eligibility"
	listinghandler "mise/internal/listings/handler"
	listingrepo "mise/internal/listings/repository"
	listingservice "mise/internal/listings/service"
	"mise/internal/notify"
	overstayhandler "mise/internal/overstay/handler"
	overstayrepo "mise/internal/overstay/repository"
	overstayservice "mise/internal/overstay/service"
	"mise/internal/payments"
	"mise/internal/pricing"
	"mise/pkg/app"
	"mise/pkg/config"
	"mise/pkg/contracts"
	"mise/pkg/kafka"
)

const ServiceName = "mise"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mise booking engine")

	producer := initProducer(cfg)
	if producer != nil {
		defer producer.Close()
	}

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(initHandlers(cfg, producer)...)
	serverApp.Run()
}

func initProducer(cfg *config.Config) *kafka.Producer {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Warn("No Kafka brokers configured, events will be dropped")
		return nil
	}

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaEventTopic,
		DLQTopic: cfg.KafkaDLQTopic,
	})
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	return producer
}

func initHandlers(cfg *config.Config, producer *kafka.Producer) []contracts.Handler {
	events := notify.NewEvents(producer, cfg.Log)
	pay := payments.NewStripeCollaborator(cfg.StripeKey, cfg.Log)
	checker := eligibility.NewHTTPChecker(cfg.EligibilityBaseURL, cfg.Log)
	calculator := pricing.NewCalculator(
		cfg.ServiceFeeBP,
		cfg.PlatformFeeBP,
		cfg.ProcessorFeeBP,
		cfg.ProcessorFeeFixed,
		cfg.Currency,
	)

	listingRepo := listingrepo.NewMongoListingRepository(cfg)
	listingService := listingservice.NewListingService(listingRepo, cfg)

	reservationRepo := bookingrepo.NewMongoReservationRepository(cfg)
	conflicts := bookingservice.NewConflictDetector(reservationRepo)
	bookingService := bookingservice.NewBookingService(
		reservationRepo,
		listingRepo,
		conflicts,
		calculator,
		bookingvalidator.NewBookingValidator(cfg.SlotGranularityMin, cfg.Log),
		checker,
		pay,
		events,
		cfg,
	)

	scheduleRepo := availabilityrepo.NewMongoScheduleRepository(cfg)
	slotCache := availabilityservice.NewSlotCache(cfg.Client.Redis, cfg.SlotCacheTTL, cfg.Log)
	availabilityService := availabilityservice.NewAvailabilityService(
		scheduleRepo,
		reservationRepo,
		slotCache,
		availabilityvalidator.NewScheduleValidator(cfg.Log),
		cfg,
	)

	extensionRepo := overstayrepo.NewMongoExtensionRepository(cfg)
	overstayService := overstayservice.NewOverstayService(
		extensionRepo,
		listingRepo,
		conflicts,
		calculator,
		pay,
		events,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		listinghandler.NewListingHandler(listingService, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilityService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		overstayhandler.NewOverstayHandler(overstayService, cfg.Log),
	}
}
