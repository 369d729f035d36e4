package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/robo-ride/internal/db"
	"github.com/ukydev/robo-ride/internal/models"
)

// Coordinator is the slice of the dispatch service the HTTP layer needs.
type Coordinator interface {
	Book(ctx context.Context, req models.BookingRequest) (*models.Ride, error)
	CompleteRide(ctx context.Context, rideID string) (*models.Ride, error)
	EmergencyStop(ctx context.Context, vehicleID string) (int64, error)
}

// RideHandler serves the booking and ride-listing endpoints.
type RideHandler struct {
	coordinator Coordinator
	rides       db.RideLedger
	log         log.FieldLogger
}

// NewRideHandler creates a new ride handler.
func NewRideHandler(coordinator Coordinator, rides db.RideLedger, logger log.FieldLogger) *RideHandler {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &RideHandler{coordinator: coordinator, rides: rides, log: logger}
}

// Book handles POST /api/rides.
func (h *RideHandler) Book(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var req models.BookingRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ride, err := h.coordinator.Book(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.log.WithField("error", err).Error("booking failed")
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ride)
}

// List handles GET /api/rides: every ride, newest first.
func (h *RideHandler) List(w http.ResponseWriter, r *http.Request) {
	rides, err := h.rides.ListAll(r.Context())
	if err != nil {
		h.log.WithField("error", err).Error("ride listing failed")
		writeError(w, http.StatusInternalServerError, "Failed to list rides")
		return
	}
	if rides == nil {
		rides = []models.Ride{}
	}
	writeJSON(w, http.StatusOK, rides)
}

// Complete handles POST /api/rides/{id}/complete.
func (h *RideHandler) Complete(w http.ResponseWriter, r *http.Request) {
	rideID := mux.Vars(r)["id"]
	ride, err := h.coordinator.CompleteRide(r.Context(), rideID)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.log.WithFields(log.Fields{"ride_id": rideID, "error": err}).Error("ride completion failed")
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ride)
}
