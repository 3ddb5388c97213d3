package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	stayserrors "stayworks/internal/stays/errors"
	"stayworks/pkg/config"
	"stayworks/pkg/model"
)

const (
	ResourcesCollection = "Resources"
)

type ResourceRepository interface {
	FindByID(ctx context.Context, id string) (*model.Resource, error)
	FindAll(ctx context.Context) ([]*model.Resource, error)
	Count(ctx context.Context) (int64, error)
}

type mongoResourceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoResourceRepository(cfg *config.Config) ResourceRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoResourceRepository{
		cfg:        cfg,
		collection: db.Collection(ResourcesCollection),
	}
}

func (r *mongoResourceRepository) FindByID(ctx context.Context, id string) (*model.Resource, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", stayserrors.ErrInvalidID, id)
	}

	var resource model.Resource
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&resource)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, stayserrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("failed to find resource: %w", err)
	}

	return &resource, nil
}

func (r *mongoResourceRepository) FindAll(ctx context.Context) ([]*model.Resource, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	// Planner ranking ties break on price, so a stable price sort here keeps
	// classification output deterministic.
	opts := options.Find().SetSort(bson.D{{Key: "price_cents", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find resources: %w", err)
	}
	defer cursor.Close(ctx)

	var resources []*model.Resource
	if err = cursor.All(ctx, &resources); err != nil {
		return nil, fmt.Errorf("failed to decode resources: %w", err)
	}

	return resources, nil
}

func (r *mongoResourceRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count resources: %w", err)
	}
	return count, nil
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction; a SessionContext cannot be wrapped without breaking
// transaction semantics.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}
