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

// PassLockKey is the advisory lock key serializing admissions for one pass.
// A multi-day booking consumes capacity on every day it spans, so locking is
// per pass rather than per (pass, date); two admissions for different dates
// of the same pass may still contend for the same day's last slot.
func PassLockKey(passID string) string {
	return fmt.Sprintf("pass_admit_%s", passID)
}

type AdmissionLockRepository interface {
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
