package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/robo-ride/internal/geo"
	"github.com/ukydev/robo-ride/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("not found")
	// ErrNoneAvailable is returned when no vehicle can be selected or claimed.
	ErrNoneAvailable = errors.New("no vehicle available")
)

// VehicleRegistry is the durable record of each vehicle's last-known
// telemetry and dispatch state.
type VehicleRegistry interface {
	UpsertTelemetry(ctx context.Context, report models.SensorReport) (*models.Vehicle, error)
	FindByID(ctx context.Context, vehicleID string) (*models.Vehicle, error)
	FindAll(ctx context.Context) ([]models.Vehicle, error)
	FindAvailable(ctx context.Context, near *models.Location) (*models.Vehicle, error)
	ClaimAvailable(ctx context.Context, near *models.Location, rideRef string) (*models.Vehicle, error)
	Release(ctx context.Context, vehicleID string) error
	MarkStopped(ctx context.Context, vehicleID string) error
}

// MongoVehicleRegistry implements VehicleRegistry on a MongoDB collection.
type MongoVehicleRegistry struct {
	Collection *mongo.Collection
}

// UpsertTelemetry overwrites the telemetry fields of the vehicle, creating
// the document on first sight. Sensor values are trusted as-is. A vehicle
// seen for the first time starts available with the default capacity.
func (r *MongoVehicleRegistry) UpsertTelemetry(ctx context.Context, report models.SensorReport) (*models.Vehicle, error) {
	if r.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	filter := bson.M{"id": report.VehicleID}
	update := bson.M{
		"$set": bson.M{
			"location":   report.Location,
			"heading":    report.Heading,
			"speed":      report.Speed,
			"battery":    report.Battery,
			"irReading":  report.IRReading,
			"lastUpdate": time.Now(),
		},
		// the filter's id is carried into the inserted document
		"$setOnInsert": bson.M{
			"isAvailable": true,
			"capacity":    models.DefaultCapacity,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var vehicle models.Vehicle
	if err := r.Collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&vehicle); err != nil {
		return nil, fmt.Errorf("upsert telemetry for %s: %w", report.VehicleID, err)
	}
	return &vehicle, nil
}

// FindByID finds a vehicle by its fleet id.
func (r *MongoVehicleRegistry) FindByID(ctx context.Context, vehicleID string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.Collection.FindOne(ctx, bson.M{"id": vehicleID}).Decode(&vehicle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("vehicle %s: %w", vehicleID, ErrNotFound)
		}
		return nil, err
	}
	return &vehicle, nil
}

// FindAll returns every registered vehicle.
func (r *MongoVehicleRegistry) FindAll(ctx context.Context) ([]models.Vehicle, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// FindAvailable returns the available vehicle nearest to the given point, or
// the first available one when no point is given.
func (r *MongoVehicleRegistry) FindAvailable(ctx context.Context, near *models.Location) (*models.Vehicle, error) {
	candidates, err := r.availableByDistance(ctx, near)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoneAvailable
	}
	return &candidates[0], nil
}

// ClaimAvailable atomically selects and claims an available vehicle: the
// availability flip is a conditional update that only succeeds while
// isAvailable is still true, so two concurrent bookings can never claim the
// same vehicle. Candidates are tried nearest-first; losing a race to another
// booking moves on to the next candidate.
func (r *MongoVehicleRegistry) ClaimAvailable(ctx context.Context, near *models.Location, rideRef string) (*models.Vehicle, error) {
	candidates, err := r.availableByDistance(ctx, near)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		vehicle := candidates[i]
		res, err := r.Collection.UpdateOne(ctx,
			bson.M{"id": vehicle.VehicleID, "isAvailable": true},
			bson.M{"$set": bson.M{"isAvailable": false, "currentRide": rideRef}},
		)
		if err != nil {
			return nil, fmt.Errorf("claim vehicle %s: %w", vehicle.VehicleID, err)
		}
		if res.ModifiedCount == 1 {
			vehicle.IsAvailable = false
			vehicle.CurrentRide = rideRef
			return &vehicle, nil
		}
		// lost the race for this vehicle, try the next one
	}
	return nil, ErrNoneAvailable
}

// Release makes a vehicle available again and clears its ride reference.
// Used both as the dispatch compensating action and on ride completion.
func (r *MongoVehicleRegistry) Release(ctx context.Context, vehicleID string) error {
	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"id": vehicleID},
		bson.M{"$set": bson.M{"isAvailable": true}, "$unset": bson.M{"currentRide": ""}},
	)
	if err != nil {
		return fmt.Errorf("release vehicle %s: %w", vehicleID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("vehicle %s: %w", vehicleID, ErrNotFound)
	}
	return nil
}

// MarkStopped zeroes the vehicle's speed. Availability is deliberately left
// untouched: a stopped vehicle keeps its claim until its rides are resolved.
func (r *MongoVehicleRegistry) MarkStopped(ctx context.Context, vehicleID string) error {
	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"id": vehicleID},
		bson.M{"$set": bson.M{"speed": float64(0)}},
	)
	if err != nil {
		return fmt.Errorf("mark vehicle %s stopped: %w", vehicleID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("vehicle %s: %w", vehicleID, ErrNotFound)
	}
	return nil
}

func (r *MongoVehicleRegistry) availableByDistance(ctx context.Context, near *models.Location) ([]models.Vehicle, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"isAvailable": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	if near != nil {
		sort.Slice(vehicles, func(i, j int) bool {
			di := geo.Haversine(near.Lat, near.Lng, vehicles[i].Location.Lat, vehicles[i].Location.Lng)
			dj := geo.Haversine(near.Lat, near.Lng, vehicles[j].Location.Lat, vehicles[j].Location.Lng)
			return di < dj
		})
	}
	return vehicles, nil
}
