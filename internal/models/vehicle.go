package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultCapacity is assigned to a vehicle the first time it reports telemetry.
const DefaultCapacity = 4

// Vehicle represents one physical unit in the fleet. The stable string ID is
// reported by the vehicle itself and also used to derive its control-endpoint
// address; the Mongo ObjectID is internal.
type Vehicle struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	VehicleID   string             `bson:"id" json:"id"`
	Location    Location           `bson:"location" json:"location"`
	Heading     float64            `bson:"heading" json:"heading"`
	Speed       float64            `bson:"speed" json:"speed"`
	Battery     float64            `bson:"battery" json:"battery"`
	IRReading   float64            `bson:"irReading" json:"irReading"`
	IsAvailable bool               `bson:"isAvailable" json:"isAvailable"`
	Capacity    int                `bson:"capacity" json:"capacity"`
	CurrentRide string             `bson:"currentRide,omitempty" json:"currentRide,omitempty"`
	LastUpdate  time.Time          `bson:"lastUpdate" json:"lastUpdate"`
}

// SensorReport is the telemetry payload a vehicle posts to /api/sensor
// (or publishes over MQTT). Sensor values are trusted and not range-checked.
type SensorReport struct {
	VehicleID string    `json:"vehicleId"`
	Location  Location  `json:"location"`
	Heading   float64   `json:"heading"`
	Speed     float64   `json:"speed"`
	Battery   float64   `json:"battery"`
	IRReading float64   `json:"irReading"`
	RFIDTaps  []RFIDTap `json:"rfidTaps,omitempty"`
}
