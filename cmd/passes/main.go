package main

import (
	"github.com/joho/godotenv"

	"stayworks/internal/passes/handler"
	"stayworks/internal/passes/repository"
	"stayworks/internal/passes/service"
	"stayworks/internal/passes/validator"
	"stayworks/pkg/app"
	"stayworks/pkg/cache"
	"stayworks/pkg/config"
	"stayworks/pkg/kafka"
	"stayworks/pkg/notify"
)

const ServiceName = "passes"

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Passes service")
	passService, notifier := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(notifier.Close)
	serverApp.OnShutdown(cfg.GracefulShutdown)
	serverApp.SetApp(handler.NewPassHandler(passService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.PassService, *notify.Notifier) {
	notifier := buildNotifier(cfg)

	passService := service.NewPassService(
		repository.NewMongoPassRepository(cfg),
		repository.NewMongoPassBookingRepository(cfg),
		repository.NewMongoOverrideRepository(cfg),
		repository.NewMongoAdmissionLockRepository(cfg),
		validator.NewPassBookingValidator(cfg.Log),
		cache.NewCapacityCache(cfg.Client.Redis, cfg.CapacityCacheTTL, cfg.Log),
		notifier,
		cfg,
	)

	cfg.Log.Info("Pass service initialized", "database", cfg.MongoDatabaseName)
	return passService, notifier
}

func buildNotifier(cfg *config.Config) *notify.Notifier {
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaAdmissionsTopic)
	if err != nil {
		// Admission must keep working without the event pipeline.
		cfg.Log.Warn("Event producer unavailable, notifications disabled", "error", err)
		return notify.New(nil, cfg.Log, ServiceName)
	}
	return notify.New(producer, cfg.Log, ServiceName)
}
