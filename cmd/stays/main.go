package main

import (
	"github.com/joho/godotenv"

	"stayworks/internal/stays/handler"
	"stayworks/internal/stays/repository"
	"stayworks/internal/stays/service"
	"stayworks/internal/stays/validator"
	"stayworks/pkg/app"
	"stayworks/pkg/config"
	"stayworks/pkg/kafka"
	"stayworks/pkg/notify"
)

const ServiceName = "stays"

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Stays service")
	stayService, notifier := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(notifier.Close)
	serverApp.OnShutdown(cfg.GracefulShutdown)
	serverApp.SetApp(handler.NewStayHandler(stayService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.StayService, *notify.Notifier) {
	notifier := buildNotifier(cfg)

	stayService := service.NewStayService(
		repository.NewMongoResourceRepository(cfg),
		repository.NewMongoReservationRepository(cfg),
		repository.NewMongoAdmissionLockRepository(cfg),
		validator.NewStayValidator(cfg.Log, cfg.MinStayNights),
		notifier,
		cfg,
	)

	cfg.Log.Info("Stay service initialized", "database", cfg.MongoDatabaseName)
	return stayService, notifier
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
