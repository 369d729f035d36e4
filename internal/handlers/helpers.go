package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ukydev/robo-ride/internal/db"
	"github.com/ukydev/robo-ride/internal/dispatch"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFor maps the dispatch error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dispatch.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, dispatch.ErrNoVehicleAvailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dispatch.ErrRideNotActive):
		return http.StatusConflict
	default:
		// gateway, storage and partial-consistency failures
		return http.StatusInternalServerError
	}
}
