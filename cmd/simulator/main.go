package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Location represents a geographical location with latitude and longitude coordinates.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SensorReport is the telemetry payload posted to the backend.
type SensorReport struct {
	VehicleID string    `json:"vehicleId"`
	Location  Location  `json:"location"`
	Heading   float64   `json:"heading"`
	Speed     float64   `json:"speed"`
	Battery   float64   `json:"battery"`
	IRReading float64   `json:"irReading"`
	RFIDTaps  []RFIDTap `json:"rfidTaps,omitempty"`
}

// RFIDTap mimics a card tap the vehicle's reader picked up.
type RFIDTap struct {
	CardID     string `json:"cardId"`
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	IsVerified bool   `json:"isVerified"`
}

type moveCommand struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Command string  `json:"command"`
}

// Campus waypoints the simulated fleet roams between.
var waypoints = []Location{
	{Lat: 51.5074, Lng: -0.1278},
	{Lat: 51.5115, Lng: -0.1160},
	{Lat: 51.5033, Lng: -0.1196},
	{Lat: 51.5145, Lng: -0.1270},
	{Lat: 51.5007, Lng: -0.1246},
}

var riders = []RFIDTap{
	{CardID: "04A1B2C3", UserID: "u-101", Name: "Asha", IsVerified: true},
	{CardID: "04D4E5F6", UserID: "u-102", Name: "Marco", IsVerified: true},
	{CardID: "04FFFFFF", UserID: "", Name: "unknown", IsVerified: false},
}

func jitterLocation(base Location, meters float64) Location {
	latMetersPerDeg := 111320.0
	lngMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLng := (rand.Float64()*2 - 1) * (meters / lngMetersPerDeg)
	return Location{Lat: base.Lat + dLat, Lng: base.Lng + dLng}
}

// vehicle is one simulated unit: it posts telemetry and answers the control
// endpoints the backend's command gateway calls.
type vehicle struct {
	mu      sync.Mutex
	id      string
	loc     Location
	heading float64
	speed   float64
	battery float64
	target  *Location
	stopped bool
}

func newVehicle(port int) *vehicle {
	return &vehicle{
		// the id doubles as the control address, so the backend's
		// address resolution hits this process directly
		id:      fmt.Sprintf("localhost:%d", port),
		loc:     jitterLocation(waypoints[rand.Intn(len(waypoints))], 200),
		battery: 80 + rand.Float64()*20,
	}
}

func (v *vehicle) serveControl(port int) {
	muxer := http.NewServeMux()
	muxer.HandleFunc("/move", func(w http.ResponseWriter, r *http.Request) {
		var cmd moveCommand
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			http.Error(w, "bad command", http.StatusBadRequest)
			return
		}
		v.mu.Lock()
		v.target = &Location{Lat: cmd.Lat, Lng: cmd.Lng}
		v.stopped = false
		v.speed = 8 + rand.Float64()*4
		v.mu.Unlock()
		log.WithFields(log.Fields{"vehicle": v.id, "lat": cmd.Lat, "lng": cmd.Lng}).Info("move command accepted")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true}`))
	})
	muxer.HandleFunc("/emergency-stop", func(w http.ResponseWriter, r *http.Request) {
		v.mu.Lock()
		v.stopped = true
		v.speed = 0
		v.target = nil
		v.mu.Unlock()
		log.WithField("vehicle", v.id).Warn("emergency stop executed")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true}`))
	})
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), muxer); err != nil {
			log.WithFields(log.Fields{"vehicle": v.id, "error": err}).Fatal("control endpoint died")
		}
	}()
}

func (v *vehicle) tick() SensorReport {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.target != nil && !v.stopped {
		// crude straight-line motion toward the target
		dLat := v.target.Lat - v.loc.Lat
		dLng := v.target.Lng - v.loc.Lng
		v.heading = math.Mod(math.Atan2(dLng, dLat)*180/math.Pi+360, 360)
		v.loc.Lat += dLat * 0.2
		v.loc.Lng += dLng * 0.2
		if math.Abs(dLat) < 0.0001 && math.Abs(dLng) < 0.0001 {
			v.target = nil
			v.speed = 0
		}
	} else if !v.stopped {
		v.loc = jitterLocation(v.loc, 5)
	}

	v.battery = math.Max(0, v.battery-rand.Float64()*0.05)

	report := SensorReport{
		VehicleID: v.id,
		Location:  v.loc,
		Heading:   v.heading,
		Speed:     v.speed,
		Battery:   v.battery,
		IRReading: rand.Float64() * 100,
	}
	if rand.Intn(20) == 0 {
		report.RFIDTaps = []RFIDTap{riders[rand.Intn(len(riders))]}
	}
	return report
}

func postTelemetry(apiURL string, report SensorReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(apiURL+"/api/sensor", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned %d", resp.StatusCode)
	}
	return nil
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:4000"
	}
	numVehicles := envInt("NUM_VEHICLES", 3)
	basePort := envInt("BASE_PORT", 9100)
	interval := time.Duration(envInt("INTERVAL_SECONDS", 5)) * time.Second

	log.WithFields(log.Fields{
		"api":      apiURL,
		"vehicles": numVehicles,
		"interval": interval,
	}).Info("starting vehicle simulator")

	fleet := make([]*vehicle, 0, numVehicles)
	for i := 0; i < numVehicles; i++ {
		port := basePort + i
		v := newVehicle(port)
		v.serveControl(port)
		fleet = append(fleet, v)
		log.WithField("vehicle", v.id).Info("vehicle online")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		for _, v := range fleet {
			report := v.tick()
			if err := postTelemetry(apiURL, report); err != nil {
				log.WithFields(log.Fields{"vehicle": v.id, "error": err}).Warn("telemetry post failed")
				continue
			}
			log.WithFields(log.Fields{
				"vehicle": v.id,
				"speed":   fmt.Sprintf("%.1f", report.Speed),
				"battery": fmt.Sprintf("%.1f", report.Battery),
			}).Debug("telemetry sent")
		}
	}
}
