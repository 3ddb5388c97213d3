package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stayworks/pkg/config"
	"stayworks/pkg/model"
)

const (
	ScheduleOverridesCollection = "Schedule_overrides"
)

type OverrideRepository interface {
	// FindActiveInRange returns the active overrides of a pass whose
	// inclusive date range intersects [startDay, endDay]. The resolver
	// applies the priority rules; the repository only narrows the set.
	FindActiveInRange(ctx context.Context, passID string, startDay, endDay time.Time) ([]*model.ScheduleOverride, error)
}

type mongoOverrideRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoOverrideRepository(cfg *config.Config) OverrideRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoOverrideRepository{
		cfg:        cfg,
		collection: db.Collection(ScheduleOverridesCollection),
	}
}

func (r *mongoOverrideRepository) FindActiveInRange(ctx context.Context, passID string, startDay, endDay time.Time) ([]*model.ScheduleOverride, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"pass_id":    passID,
		"is_active":  true,
		"start_date": bson.M{"$lte": endDay},
		"end_date":   bson.M{"$gte": startDay},
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "priority", Value: -1},
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find schedule overrides: %w", err)
	}
	defer cursor.Close(ctx)

	var overrides []*model.ScheduleOverride
	if err = cursor.All(ctx, &overrides); err != nil {
		return nil, fmt.Errorf("failed to decode schedule overrides: %w", err)
	}

	return overrides, nil
}
