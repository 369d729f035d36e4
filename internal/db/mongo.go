package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names match the documents the fleet firmware already writes.
const (
	VehiclesCollection = "vehicles"
	RidesCollection    = "rides"
	RFIDCollection     = "rfids"
)

// Connect establishes and verifies the MongoDB connection. It is called once
// at startup, before the server accepts traffic; request handlers never
// trigger connection setup.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the registry and ledger rely on:
// a unique index on the vehicle id (telemetry upserts must never fork a
// vehicle into two documents) and sort indexes for the ordered listings.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(VehiclesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("vehicles index: %w", err)
	}
	_, err = database.Collection(RidesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("rides index: %w", err)
	}
	_, err = database.Collection(RFIDCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("rfids index: %w", err)
	}
	return nil
}
