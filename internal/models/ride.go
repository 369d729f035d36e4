package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ride statuses. A ride is created as StatusConfirmed and only ever moves
// forward; emergency_stopped is terminal.
const (
	StatusConfirmed        = "confirmed"
	StatusInProgress       = "in-progress"
	StatusEmergencyStopped = "emergency_stopped"
	StatusCompleted        = "completed"
)

// Ride represents one booking. Immutable once created except for status.
type Ride struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PickupLocation      Location           `bson:"pickupLocation" json:"pickupLocation"`
	DestinationLocation Location           `bson:"destinationLocation" json:"destinationLocation"`
	PassengerCount      int                `bson:"passengerCount" json:"passengerCount"`
	RFIDVerified        bool               `bson:"rfidVerified" json:"rfidVerified"`
	Status              string             `bson:"status" json:"status"`
	EstimatedTime       float64            `bson:"estimatedTime" json:"estimatedTime"`
	Fare                float64            `bson:"fare" json:"fare"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	VehicleID           string             `bson:"vehicleId" json:"vehicleId"`
}

// BookingRequest is the inbound payload for POST /api/rides. EstimatedTime
// and Fare are optional; when zero the dispatcher fills them from distance.
type BookingRequest struct {
	PickupLocation      *Location `json:"pickupLocation"`
	DestinationLocation *Location `json:"destinationLocation"`
	PassengerCount      int       `json:"passengerCount"`
	RFIDVerified        bool      `json:"rfidVerified"`
	EstimatedTime       float64   `json:"estimatedTime,omitempty"`
	Fare                float64   `json:"fare,omitempty"`
}

// IsActiveStatus reports whether a ride in this status still occupies a
// vehicle (and is therefore cascaded by an emergency stop).
func IsActiveStatus(status string) bool {
	return status == StatusConfirmed || status == StatusInProgress
}
