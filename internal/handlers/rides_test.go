package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ukydev/robo-ride/internal/db"
	"github.com/ukydev/robo-ride/internal/dispatch"
	"github.com/ukydev/robo-ride/internal/models"
)

// MockCoordinator is a mock implementation of Coordinator
type MockCoordinator struct {
	mock.Mock
}

func (m *MockCoordinator) Book(ctx context.Context, req models.BookingRequest) (*models.Ride, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ride), args.Error(1)
}

func (m *MockCoordinator) CompleteRide(ctx context.Context, rideID string) (*models.Ride, error) {
	args := m.Called(ctx, rideID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ride), args.Error(1)
}

func (m *MockCoordinator) EmergencyStop(ctx context.Context, vehicleID string) (int64, error) {
	args := m.Called(ctx, vehicleID)
	return args.Get(0).(int64), args.Error(1)
}

// MockRideLedger is a mock implementation of db.RideLedger
type MockRideLedger struct {
	mock.Mock
}

func (m *MockRideLedger) Insert(ctx context.Context, ride models.Ride) (*models.Ride, error) {
	args := m.Called(ctx, ride)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ride), args.Error(1)
}

func (m *MockRideLedger) ListAll(ctx context.Context) ([]models.Ride, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ride), args.Error(1)
}

func (m *MockRideLedger) FindByID(ctx context.Context, id string) (*models.Ride, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ride), args.Error(1)
}

func (m *MockRideLedger) SetStatus(ctx context.Context, id string, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockRideLedger) UpdateStatusForVehicle(ctx context.Context, vehicleID string, fromStatuses []string, toStatus string) (int64, error) {
	args := m.Called(ctx, vehicleID, fromStatuses, toStatus)
	return args.Get(0).(int64), args.Error(1)
}

func bookingBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"pickupLocation":      map[string]float64{"lat": 51.5074, "lng": -0.1278},
		"destinationLocation": map[string]float64{"lat": 51.5033, "lng": -0.1196},
		"passengerCount":      2,
		"rfidVerified":        true,
	})
	assert.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestRideHandler_Book_Success(t *testing.T) {
	coordinator := new(MockCoordinator)
	ledger := new(MockRideLedger)
	handler := NewRideHandler(coordinator, ledger, nil)

	coordinator.On("Book", mock.Anything, mock.Anything).Return(&models.Ride{
		VehicleID: "V1", Status: models.StatusConfirmed,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/rides", bookingBody(t))
	w := httptest.NewRecorder()
	handler.Book(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var ride models.Ride
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &ride))
	assert.Equal(t, "V1", ride.VehicleID)
	assert.Equal(t, models.StatusConfirmed, ride.Status)
}

func TestRideHandler_Book_InvalidJSON(t *testing.T) {
	handler := NewRideHandler(new(MockCoordinator), new(MockRideLedger), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/rides", bytes.NewBufferString("{bad json"))
	w := httptest.NewRecorder()
	handler.Book(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRideHandler_Book_ErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"validation", fmt.Errorf("%w: too many passengers", dispatch.ErrValidation), http.StatusBadRequest},
		{"no vehicle", dispatch.ErrNoVehicleAvailable, http.StatusServiceUnavailable},
		{"gateway", fmt.Errorf("%w: refused", dispatch.ErrGateway), http.StatusInternalServerError},
		{"storage", fmt.Errorf("%w: down", dispatch.ErrStorage), http.StatusInternalServerError},
		{"partial", fmt.Errorf("%w: drift", dispatch.ErrPartialConsistency), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coordinator := new(MockCoordinator)
			handler := NewRideHandler(coordinator, new(MockRideLedger), nil)
			coordinator.On("Book", mock.Anything, mock.Anything).Return(nil, tt.err)

			req := httptest.NewRequest(http.MethodPost, "/api/rides", bookingBody(t))
			w := httptest.NewRecorder()
			handler.Book(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)

			var resp map[string]string
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestRideHandler_List_NewestFirst(t *testing.T) {
	coordinator := new(MockCoordinator)
	ledger := new(MockRideLedger)
	handler := NewRideHandler(coordinator, ledger, nil)

	newer := models.Ride{VehicleID: "V2", CreatedAt: time.Now()}
	older := models.Ride{VehicleID: "V1", CreatedAt: time.Now().Add(-time.Hour)}
	ledger.On("ListAll", mock.Anything).Return([]models.Ride{newer, older}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/rides", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var rides []models.Ride
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &rides))
	assert.Len(t, rides, 2)
	assert.Equal(t, "V2", rides[0].VehicleID)
	assert.True(t, rides[0].CreatedAt.After(rides[1].CreatedAt))
}

func TestRideHandler_List_Empty(t *testing.T) {
	ledger := new(MockRideLedger)
	handler := NewRideHandler(new(MockCoordinator), ledger, nil)
	ledger.On("ListAll", mock.Anything).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/rides", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestRideHandler_Complete(t *testing.T) {
	coordinator := new(MockCoordinator)
	handler := NewRideHandler(coordinator, new(MockRideLedger), nil)
	coordinator.On("CompleteRide", mock.Anything, "abc123").Return(&models.Ride{Status: models.StatusCompleted}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/rides/abc123/complete", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "abc123"})
	w := httptest.NewRecorder()
	handler.Complete(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRideHandler_Complete_NotFound(t *testing.T) {
	coordinator := new(MockCoordinator)
	handler := NewRideHandler(coordinator, new(MockRideLedger), nil)
	coordinator.On("CompleteRide", mock.Anything, "missing").Return(nil, fmt.Errorf("ride missing: %w", db.ErrNotFound))

	req := httptest.NewRequest(http.MethodPost, "/api/rides/missing/complete", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "missing"})
	w := httptest.NewRecorder()
	handler.Complete(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRideHandler_Complete_NotActive(t *testing.T) {
	coordinator := new(MockCoordinator)
	handler := NewRideHandler(coordinator, new(MockRideLedger), nil)
	coordinator.On("CompleteRide", mock.Anything, "done").Return(nil, fmt.Errorf("%w: already completed", dispatch.ErrRideNotActive))

	req := httptest.NewRequest(http.MethodPost, "/api/rides/done/complete", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "done"})
	w := httptest.NewRecorder()
	handler.Complete(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
