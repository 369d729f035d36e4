package handlers

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/robo-ride/internal/db"
	"github.com/ukydev/robo-ride/internal/models"
)

// rfidLogLimit caps how many taps the log endpoint returns.
const rfidLogLimit = 100

// RFIDHandler serves the RFID access log.
type RFIDHandler struct {
	taps db.TapLog
	log  log.FieldLogger
}

// NewRFIDHandler creates a new RFID log handler.
func NewRFIDHandler(taps db.TapLog, logger log.FieldLogger) *RFIDHandler {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &RFIDHandler{taps: taps, log: logger}
}

// List handles GET /api/rfid: up to 100 most recent taps, newest first.
func (h *RFIDHandler) List(w http.ResponseWriter, r *http.Request) {
	taps, err := h.taps.FindRecent(r.Context(), rfidLogLimit)
	if err != nil {
		h.log.WithField("error", err).Error("rfid log listing failed")
		writeError(w, http.StatusInternalServerError, "Failed to list RFID logs")
		return
	}
	if taps == nil {
		taps = []models.RFIDTap{}
	}
	writeJSON(w, http.StatusOK, taps)
}
