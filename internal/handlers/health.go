package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthHandler reports readiness. Connection setup happens once at startup;
// this only verifies the established connection is still usable.
type HealthHandler struct {
	ping func(ctx context.Context) error
}

// NewHealthHandler creates a readiness handler from a ping function.
func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// Healthz handles GET /healthz.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.ping(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "storage unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
