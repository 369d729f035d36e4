package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RFIDTap is one append-only access-log entry. The timestamp is stamped
// server-side at insertion, not taken from the device.
type RFIDTap struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CardID     string             `bson:"cardId" json:"cardId"`
	UserID     string             `bson:"userId" json:"userId"`
	Name       string             `bson:"name" json:"name"`
	IsVerified bool               `bson:"isVerified" json:"isVerified"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
}
