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

	passeserrors "stayworks/internal/passes/errors"
	"stayworks/pkg/config"
	"stayworks/pkg/model"
)

const (
	PassesCollection = "Passes"
)

type PassRepository interface {
	FindByID(ctx context.Context, id string) (*model.Pass, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Pass, int64, error)
	// UpdateCurrentCapacity refreshes the display counter only. Admission
	// never reads this field.
	UpdateCurrentCapacity(ctx context.Context, id string, demand int) error
}

type mongoPassRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPassRepository(cfg *config.Config) PassRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoPassRepository{
		cfg:        cfg,
		collection: db.Collection(PassesCollection),
	}
}

func (r *mongoPassRepository) FindByID(ctx context.Context, id string) (*model.Pass, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", passeserrors.ErrInvalidID, id)
	}

	var pass model.Pass
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&pass)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, passeserrors.ErrPassNotFound
		}
		return nil, fmt.Errorf("failed to find pass: %w", err)
	}

	return &pass, nil
}

func (r *mongoPassRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Pass, int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count passes: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "price_cents", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find passes: %w", err)
	}
	defer cursor.Close(ctx)

	var passes []*model.Pass
	if err = cursor.All(ctx, &passes); err != nil {
		return nil, 0, fmt.Errorf("failed to decode passes: %w", err)
	}

	return passes, total, nil
}

func (r *mongoPassRepository) UpdateCurrentCapacity(ctx context.Context, id string, demand int) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", passeserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		"current_capacity":       demand,
		"current_capacity_as_of": time.Now().UTC(),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update pass capacity counter: %w", err)
	}
	if result.MatchedCount == 0 {
		return passeserrors.ErrPassNotFound
	}
	return nil
}
