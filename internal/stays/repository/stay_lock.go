package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"stayworks/pkg/config"
	apperrors "stayworks/pkg/errors"
	"stayworks/pkg/model"
)

const (
	AdmissionLocksCollection = "Admission_locks"
)

// StayLockKey is the advisory lock key serializing admissions for one
// resource. All writers that could violate exclusivity on the resource must
// contend on this key.
func StayLockKey(resourceID string) string {
	return fmt.Sprintf("stay_admit_%s", resourceID)
}

type AdmissionLockRepository interface {
	// Acquire inserts the lock document. A duplicate key means another
	// admission holds the key; that surfaces as a Conflict AppError so the
	// caller fails closed.
	Acquire(ctx context.Context, key string) error
	Release(ctx context.Context, key string) error
}

type mongoAdmissionLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAdmissionLockRepository(cfg *config.Config) AdmissionLockRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoAdmissionLockRepository{
		cfg:        cfg,
		collection: db.Collection(AdmissionLocksCollection),
	}
}

func (r *mongoAdmissionLockRepository) Acquire(ctx context.Context, key string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	lock := &model.AdmissionLock{
		ID:        key,
		ExpiresAt: now.Add(r.cfg.AdmissionLockTTL),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("another admission is in progress, please retry")
		}
		return fmt.Errorf("failed to acquire admission lock: %w", err)
	}
	return nil
}

func (r *mongoAdmissionLockRepository) Release(ctx context.Context, key string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return fmt.Errorf("failed to release admission lock: %w", err)
	}
	return nil
}
