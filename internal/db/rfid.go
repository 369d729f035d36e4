package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/robo-ride/internal/models"
)

// TapLog is the append-only RFID access log.
type TapLog interface {
	InsertTaps(ctx context.Context, taps []models.RFIDTap) error
	FindRecent(ctx context.Context, limit int64) ([]models.RFIDTap, error)
}

// MongoTapLog implements TapLog on a MongoDB collection.
type MongoTapLog struct {
	Collection *mongo.Collection
}

// InsertTaps appends the given taps, stamping each with the current time.
func (t *MongoTapLog) InsertTaps(ctx context.Context, taps []models.RFIDTap) error {
	if len(taps) == 0 {
		return nil
	}
	if t.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	now := time.Now()
	docs := make([]interface{}, 0, len(taps))
	for _, tap := range taps {
		tap.Timestamp = now
		docs = append(docs, tap)
	}
	_, err := t.Collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("insert rfid taps: %w", err)
	}
	return nil
}

// FindRecent returns up to limit taps, newest first.
func (t *MongoTapLog) FindRecent(ctx context.Context, limit int64) ([]models.RFIDTap, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	cursor, err := t.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var taps []models.RFIDTap
	if err := cursor.All(ctx, &taps); err != nil {
		return nil, err
	}
	return taps, nil
}
