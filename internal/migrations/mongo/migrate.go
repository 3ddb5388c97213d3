package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stayworks/internal/migrations/mongo/validators"
)

var (
	ResourcesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "price_cents", Value: 1}}},
	}

	ReservationsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "resource_id", Value: 1},
			{Key: "state", Value: 1},
			{Key: "start_date", Value: 1},
			{Key: "end_date", Value: 1},
		}},
		{Keys: bson.D{{Key: "stay_id", Value: 1}}},
		{Keys: bson.D{{Key: "guest_id", Value: 1}, {Key: "start_date", Value: -1}}},
	}

	PassesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_date_restricted", Value: 1}, {Key: "available_from", Value: 1}}},
		{Keys: bson.D{{Key: "price_cents", Value: 1}}},
	}

	ScheduleOverridesIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "pass_id", Value: 1},
			{Key: "is_active", Value: 1},
			{Key: "start_date", Value: 1},
			{Key: "end_date", Value: 1},
		}},
		{Keys: bson.D{{Key: "pass_id", Value: 1}, {Key: "priority", Value: -1}}},
	}

	PassBookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "pass_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "start_date", Value: 1},
			{Key: "end_date", Value: 1},
		}},
		{Keys: bson.D{{Key: "member_id", Value: 1}, {Key: "start_date", Value: -1}}},
	}

	// The TTL index makes crashed admission holders harmless: Mongo reaps
	// an expired lock document and the key becomes acquirable again.
	AdmissionLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("🚀 Running Stayworks Mongo migrations on database: %s\n", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Resources": {
			Indexes:   ResourcesIndexes,
			Validator: validators.ResourceValidator,
		},
		"Reservations": {
			Indexes:   ReservationsIndexes,
			Validator: validators.ReservationValidator,
		},
		"Passes": {
			Indexes:   PassesIndexes,
			Validator: validators.PassValidator,
		},
		"Schedule_overrides": {
			Indexes:   ScheduleOverridesIndexes,
			Validator: validators.ScheduleOverrideValidator,
		},
		"Pass_bookings": {
			Indexes:   PassBookingsIndexes,
			Validator: validators.PassBookingValidator,
		},
		"Admission_locks": {
			Indexes:   AdmissionLocksIndexes,
			Validator: validators.AdmissionLockValidator,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("✅ All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("🆕 Creating collection: %s\n", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else {
		fmt.Printf("ℹ️ Collection %s already exists — updating validator if needed\n", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("⚠️ Warning: failed updating validator for %s: %v\n", name, err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("📚 Ensured indexes for %s\n", name)
	return nil
}

// Seed inserts a starter catalog when the target collections are empty, so a
// fresh environment has something to book against.
func Seed(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)

	resources := db.Collection("Resources")
	n, err := resources.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count resources: %w", err)
	}
	if n > 0 {
		fmt.Println("ℹ️ Catalog already seeded, skipping")
		return nil
	}

	now := time.Now().UTC()
	_, err = resources.InsertMany(ctx, []any{
		bson.M{"title": "Harbor Loft", "price_cents": int64(9000), "capacity": 2, "status": "available", "created_at": now},
		bson.M{"title": "Garden Studio", "price_cents": int64(7500), "capacity": 2, "status": "available", "created_at": now},
		bson.M{"title": "Attic Room", "price_cents": int64(6000), "capacity": 1, "status": "available", "created_at": now},
	})
	if err != nil {
		return fmt.Errorf("failed to seed resources: %w", err)
	}

	ten := 10
	_, err = db.Collection("Passes").InsertMany(ctx, []any{
		bson.M{"name": "Hot Desk Day Pass", "price_cents": int64(2500), "duration_days": 1, "is_capacity_limited": false, "is_date_restricted": false, "current_capacity": 0, "created_at": now},
		bson.M{"name": "Flex Week Pass", "price_cents": int64(12000), "duration_days": 7, "base_max_capacity": ten, "is_capacity_limited": true, "is_date_restricted": false, "current_capacity": 0, "created_at": now},
	})
	if err != nil {
		return fmt.Errorf("failed to seed passes: %w", err)
	}

	fmt.Println("🌱 Seeded starter catalog")
	return nil
}
