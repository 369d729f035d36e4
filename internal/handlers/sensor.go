package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/robo-ride/internal/db"
	"github.com/ukydev/robo-ride/internal/models"
	"github.com/ukydev/robo-ride/internal/observability"
)

// SensorHandler ingests telemetry reports from vehicles.
type SensorHandler struct {
	vehicles db.VehicleRegistry
	taps     db.TapLog
	log      log.FieldLogger
}

// NewSensorHandler creates a new telemetry ingest handler.
func NewSensorHandler(vehicles db.VehicleRegistry, taps db.TapLog, logger log.FieldLogger) *SensorHandler {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &SensorHandler{vehicles: vehicles, taps: taps, log: logger}
}

// Report handles POST /api/sensor: upserts the vehicle's telemetry and
// appends any RFID taps bundled with the report.
func (h *SensorHandler) Report(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var report models.SensorReport
	if err := json.Unmarshal(body, &report); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if report.VehicleID == "" {
		writeError(w, http.StatusBadRequest, "vehicleId is required")
		return
	}

	if _, err := h.vehicles.UpsertTelemetry(r.Context(), report); err != nil {
		h.log.WithFields(log.Fields{"vehicle_id": report.VehicleID, "error": err}).Error("telemetry upsert failed")
		writeError(w, http.StatusInternalServerError, "Failed to store telemetry")
		return
	}
	observability.TelemetryReportsTotal.WithLabelValues("http").Inc()

	if err := h.taps.InsertTaps(r.Context(), report.RFIDTaps); err != nil {
		h.log.WithFields(log.Fields{"vehicle_id": report.VehicleID, "error": err}).Error("rfid tap insert failed")
		writeError(w, http.StatusInternalServerError, "Failed to store RFID taps")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
