package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/robo-ride/internal/db"
	"github.com/ukydev/robo-ride/internal/models"
)

// VehicleHandler serves vehicle queries and the emergency-stop endpoint.
type VehicleHandler struct {
	vehicles    db.VehicleRegistry
	coordinator Coordinator
	log         log.FieldLogger
}

// NewVehicleHandler creates a new vehicle handler.
func NewVehicleHandler(vehicles db.VehicleRegistry, coordinator Coordinator, logger log.FieldLogger) *VehicleHandler {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &VehicleHandler{vehicles: vehicles, coordinator: coordinator, log: logger}
}

// List handles GET /api/vehicles.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicles.FindAll(r.Context())
	if err != nil {
		h.log.WithField("error", err).Error("vehicle listing failed")
		writeError(w, http.StatusInternalServerError, "Failed to list vehicles")
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// Get handles GET /api/vehicle/{id}.
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["id"]
	vehicle, err := h.vehicles.FindByID(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		h.log.WithFields(log.Fields{"vehicle_id": vehicleID, "error": err}).Error("vehicle lookup failed")
		writeError(w, http.StatusInternalServerError, "Failed to load vehicle")
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// EmergencyStop handles POST /api/vehicle/{id}/emergency-stop. It always
// reports explicit success or failure, never a silent no-op.
func (h *VehicleHandler) EmergencyStop(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["id"]
	if _, err := h.coordinator.EmergencyStop(r.Context(), vehicleID); err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.log.WithFields(log.Fields{"vehicle_id": vehicleID, "error": err}).Error("emergency stop failed")
		}
		writeJSON(w, status, map[string]interface{}{
			"success": false,
			"message": "Failed to trigger emergency stop: " + err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Emergency stop triggered. Vehicle stopped.",
	})
}
