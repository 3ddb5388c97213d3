package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	mongoMigration "stayworks/internal/migrations/mongo"
	"stayworks/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	seed := flag.Bool("seed", false, "insert a starter catalog after migrating")
	flag.Parse()

	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mongo migration job")
	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo.Client, cfg.MongoDatabaseName); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if *seed {
		if err := mongoMigration.Seed(ctx, cfg.Client.Mongo.Client, cfg.MongoDatabaseName); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
	}

	cfg.Log.Info("Migration completed successfully")
}
