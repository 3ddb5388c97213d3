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
	mongotx "stayworks/pkg/db/mongo"
	"stayworks/pkg/model"
)

const (
	PassBookingsCollection = "Pass_bookings"
)

type PassBookingRepository interface {
	Create(ctx context.Context, booking *model.PassBooking) error
	FindByID(ctx context.Context, id string) (*model.PassBooking, error)
	// CountDemandOnDay counts the live, non-cancelled bookings of the pass
	// whose occupied range contains the day. This is the number admission
	// compares against the ceiling; it is always a fresh count.
	CountDemandOnDay(ctx context.Context, passID string, day time.Time) (int64, error)
	FindByMember(ctx context.Context, memberID string, limit int, offset int64) ([]*model.PassBooking, int64, error)
	UpdateStatus(ctx context.Context, id string, status string) (*model.PassBooking, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoPassBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoPassBookingRepository(cfg *config.Config) PassBookingRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoPassBookingRepository{
		cfg:        cfg,
		collection: db.Collection(PassBookingsCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

func (r *mongoPassBookingRepository) Create(ctx context.Context, booking *model.PassBooking) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create pass booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPassBookingRepository) FindByID(ctx context.Context, id string) (*model.PassBooking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", passeserrors.ErrInvalidID, id)
	}

	var booking model.PassBooking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, passeserrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find pass booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoPassBookingRepository) CountDemandOnDay(ctx context.Context, passID string, day time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"pass_id":    passID,
		"status":     bson.M{"$ne": model.PassBookingCancelled},
		"start_date": bson.M{"$lte": day},
		"end_date":   bson.M{"$gt": day},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count pass demand: %w", err)
	}
	return count, nil
}

func (r *mongoPassBookingRepository) FindByMember(ctx context.Context, memberID string, limit int, offset int64) ([]*model.PassBooking, int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"member_id": memberID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count member bookings: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find member bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.PassBooking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, 0, fmt.Errorf("failed to decode member bookings: %w", err)
	}

	return bookings, total, nil
}

func (r *mongoPassBookingRepository) UpdateStatus(ctx context.Context, id string, status string) (*model.PassBooking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", passeserrors.ErrInvalidID, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"status": status}}

	var updated model.PassBooking
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, passeserrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to update pass booking status: %w", err)
	}

	return &updated, nil
}

func (r *mongoPassBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
