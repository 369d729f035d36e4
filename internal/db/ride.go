package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/robo-ride/internal/models"
)

// RideLedger is the durable record of every booking and its lifecycle status.
type RideLedger interface {
	Insert(ctx context.Context, ride models.Ride) (*models.Ride, error)
	ListAll(ctx context.Context) ([]models.Ride, error)
	FindByID(ctx context.Context, id string) (*models.Ride, error)
	SetStatus(ctx context.Context, id string, status string) error
	UpdateStatusForVehicle(ctx context.Context, vehicleID string, fromStatuses []string, toStatus string) (int64, error)
}

// MongoRideLedger implements RideLedger on a MongoDB collection.
type MongoRideLedger struct {
	Collection *mongo.Collection
}

// Insert persists a new ride, stamping createdAt and returning the stored
// record including its generated id.
func (l *MongoRideLedger) Insert(ctx context.Context, ride models.Ride) (*models.Ride, error) {
	if l.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	ride.CreatedAt = time.Now()
	res, err := l.Collection.InsertOne(ctx, ride)
	if err != nil {
		return nil, fmt.Errorf("insert ride: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		ride.ID = oid
	}
	return &ride, nil
}

// ListAll returns every ride, newest first. Single snapshot read.
func (l *MongoRideLedger) ListAll(ctx context.Context) ([]models.Ride, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := l.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var rides []models.Ride
	if err := cursor.All(ctx, &rides); err != nil {
		return nil, err
	}
	return rides, nil
}

// FindByID finds a ride by its generated record id.
func (l *MongoRideLedger) FindByID(ctx context.Context, id string) (*models.Ride, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("ride %s: %w", id, ErrNotFound)
	}
	var ride models.Ride
	err = l.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&ride)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("ride %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &ride, nil
}

// SetStatus updates the status of a single ride.
func (l *MongoRideLedger) SetStatus(ctx context.Context, id string, status string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("ride %s: %w", id, ErrNotFound)
	}
	res, err := l.Collection.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("set ride %s status: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("ride %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateStatusForVehicle bulk-updates every ride for a vehicle whose current
// status is in fromStatuses, setting it to toStatus. Returns the number of
// rides transitioned. Rides in other statuses are untouched.
func (l *MongoRideLedger) UpdateStatusForVehicle(ctx context.Context, vehicleID string, fromStatuses []string, toStatus string) (int64, error) {
	res, err := l.Collection.UpdateMany(ctx,
		bson.M{"vehicleId": vehicleID, "status": bson.M{"$in": fromStatuses}},
		bson.M{"$set": bson.M{"status": toStatus}},
	)
	if err != nil {
		return 0, fmt.Errorf("update rides for vehicle %s: %w", vehicleID, err)
	}
	return res.ModifiedCount, nil
}
