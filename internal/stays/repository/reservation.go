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
	mongotx "stayworks/pkg/db/mongo"
	"stayworks/pkg/model"
)

const (
	ReservationsCollection = "Reservations"
)

type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	// FindOccupyingByResource returns the non-cancelled, non-checked-out
	// reservations of one resource intersecting [startDate, endDate).
	FindOccupyingByResource(ctx context.Context, resourceID string, startDate, endDate time.Time) ([]*model.Reservation, error)
	// FindOccupyingInRange returns occupying reservations across all
	// resources intersecting [startDate, endDate), sorted by start date.
	FindOccupyingInRange(ctx context.Context, startDate, endDate time.Time) ([]*model.Reservation, error)
	UpdateState(ctx context.Context, id string, state string) (*model.Reservation, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoReservationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		collection: db.Collection(ReservationsCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

func (r *mongoReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	reservation.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, reservation)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		reservation.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", stayserrors.ErrInvalidID, id)
	}

	var reservation model.Reservation
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, stayserrors.ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return &reservation, nil
}

func (r *mongoReservationRepository) FindOccupyingByResource(ctx context.Context, resourceID string, startDate, endDate time.Time) ([]*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := occupancyFilter(startDate, endDate)
	filter["resource_id"] = resourceID

	return r.find(ctx, filter)
}

func (r *mongoReservationRepository) FindOccupyingInRange(ctx context.Context, startDate, endDate time.Time) ([]*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.find(ctx, occupancyFilter(startDate, endDate))
}

// occupancyFilter matches reservations that block days inside
// [startDate, endDate). Half-open semantics: a reservation ending exactly at
// startDate does not match.
func occupancyFilter(startDate, endDate time.Time) bson.M {
	return bson.M{
		"state":      bson.M{"$in": []string{model.ReservationConfirmed, model.ReservationCheckedIn}},
		"start_date": bson.M{"$lt": endDate},
		"end_date":   bson.M{"$gt": startDate},
	}
}

func (r *mongoReservationRepository) find(ctx context.Context, filter bson.M) ([]*model.Reservation, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "start_date", Value: 1},
		{Key: "end_date", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) UpdateState(ctx context.Context, id string, state string) (*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", stayserrors.ErrInvalidID, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"state": state}}

	var updated model.Reservation
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, stayserrors.ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to update reservation state: %w", err)
	}

	return &updated, nil
}

func (r *mongoReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
