package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ukydev/robo-ride/internal/models"
)

// Commander sends control commands to a vehicle's embedded HTTP endpoint.
// It never touches the registry or ledger; callers decide what a failed
// command means for persistent state.
type Commander interface {
	SendMoveToPickup(ctx context.Context, vehicleID string, pickup models.Location) error
	SendEmergencyStop(ctx context.Context, vehicleID string) error
}

type moveCommand struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Command string  `json:"command"`
}

type stopCommand struct {
	Command string `json:"command"`
}

// HTTPCommander implements Commander over plain HTTP with a bounded timeout.
type HTTPCommander struct {
	client *http.Client
}

// NewHTTPCommander builds a commander whose requests are bounded by timeout;
// a timeout is treated exactly like any other transport failure.
func NewHTTPCommander(timeout time.Duration) *HTTPCommander {
	return &HTTPCommander{client: &http.Client{Timeout: timeout}}
}

// ResolveAddress maps a vehicle id to the host the vehicle's control endpoint
// listens on. Single policy: an id containing a colon is taken as host:port
// verbatim, an id containing a dot is taken as a full hostname, anything else
// is an mDNS fragment and gets ".local" appended.
func ResolveAddress(vehicleID string) string {
	if strings.Contains(vehicleID, ":") {
		return vehicleID
	}
	if strings.Contains(vehicleID, ".") {
		return vehicleID
	}
	return vehicleID + ".local"
}

// SendMoveToPickup commands the vehicle to drive to the pickup point.
func (c *HTTPCommander) SendMoveToPickup(ctx context.Context, vehicleID string, pickup models.Location) error {
	cmd := moveCommand{Lat: pickup.Lat, Lng: pickup.Lng, Command: "move_to_pickup"}
	return c.post(ctx, vehicleID, "/move", cmd)
}

// SendEmergencyStop commands the vehicle to halt immediately.
func (c *HTTPCommander) SendEmergencyStop(ctx context.Context, vehicleID string) error {
	return c.post(ctx, vehicleID, "/emergency-stop", stopCommand{Command: "emergency_stop"})
}

func (c *HTTPCommander) post(ctx context.Context, vehicleID, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode command for vehicle %s: %w", vehicleID, err)
	}
	url := "http://" + ResolveAddress(vehicleID) + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build command request for vehicle %s: %w", vehicleID, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send command to vehicle %s: %w", vehicleID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("vehicle %s rejected command %s: status %d", vehicleID, path, resp.StatusCode)
	}
	return nil
}
