package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ukydev/robo-ride/internal/db"
	"github.com/ukydev/robo-ride/internal/models"
)

func TestEmergencyStop_UnknownVehicle(t *testing.T) {
	vehicles := new(MockVehicleRegistry)
	rides := new(MockRideLedger)
	commander := new(MockCommander)
	svc := newTestService(vehicles, rides, commander)

	vehicles.On("FindByID", mock.Anything, "ghost").Return(nil, fmt.Errorf("vehicle ghost: %w", db.ErrNotFound))

	_, err := svc.EmergencyStop(context.Background(), "ghost")
	assert.ErrorIs(t, err, db.ErrNotFound)
	commander.AssertNotCalled(t, "SendEmergencyStop", mock.Anything, mock.Anything)
}

func TestEmergencyStop_GatewayFailureLeavesStateUntouched(t *testing.T) {
	vehicles := new(MockVehicleRegistry)
	rides := new(MockRideLedger)
	commander := new(MockCommander)
	svc := newTestService(vehicles, rides, commander)

	vehicles.On("FindByID", mock.Anything, "V1").Return(&models.Vehicle{VehicleID: "V1"}, nil)
	commander.On("SendEmergencyStop", mock.Anything, "V1").Return(errors.New("no route to host"))

	_, err := svc.EmergencyStop(context.Background(), "V1")
	assert.ErrorIs(t, err, ErrGateway)
	// the stop was not confirmed, so nothing may mutate
	vehicles.AssertNotCalled(t, "MarkStopped", mock.Anything, mock.Anything)
	rides.AssertNotCalled(t, "UpdateStatusForVehicle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEmergencyStop_Success(t *testing.T) {
	vehicles := new(MockVehicleRegistry)
	rides := new(MockRideLedger)
	commander := new(MockCommander)
	svc := newTestService(vehicles, rides, commander)

	vehicles.On("FindByID", mock.Anything, "V1").Return(&models.Vehicle{VehicleID: "V1", Speed: 12}, nil)
	commander.On("SendEmergencyStop", mock.Anything, "V1").Return(nil)
	vehicles.On("MarkStopped", mock.Anything, "V1").Return(nil)
	rides.On("UpdateStatusForVehicle", mock.Anything, "V1",
		[]string{models.StatusConfirmed, models.StatusInProgress},
		models.StatusEmergencyStopped,
	).Return(int64(1), nil)

	stopped, err := svc.EmergencyStop(context.Background(), "V1")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), stopped)
	vehicles.AssertExpectations(t)
	rides.AssertExpectations(t)
}

func TestEmergencyStop_LedgerFailureIsPartial(t *testing.T) {
	vehicles := new(MockVehicleRegistry)
	rides := new(MockRideLedger)
	commander := new(MockCommander)
	svc := newTestService(vehicles, rides, commander)

	vehicles.On("FindByID", mock.Anything, "V1").Return(&models.Vehicle{VehicleID: "V1"}, nil)
	commander.On("SendEmergencyStop", mock.Anything, "V1").Return(nil)
	vehicles.On("MarkStopped", mock.Anything, "V1").Return(nil)
	rides.On("UpdateStatusForVehicle", mock.Anything, "V1", mock.Anything, mock.Anything).
		Return(int64(0), errors.New("bulk update failed"))

	_, err := svc.EmergencyStop(context.Background(), "V1")
	assert.ErrorIs(t, err, ErrPartialConsistency)
	// speed=0 stays: a stopped vehicle must not be "un-stopped" by a ledger error
	vehicles.AssertCalled(t, "MarkStopped", mock.Anything, "V1")
}

func TestEmergencyStop_MarkStoppedFailure(t *testing.T) {
	vehicles := new(MockVehicleRegistry)
	rides := new(MockRideLedger)
	commander := new(MockCommander)
	svc := newTestService(vehicles, rides, commander)

	vehicles.On("FindByID", mock.Anything, "V1").Return(&models.Vehicle{VehicleID: "V1"}, nil)
	commander.On("SendEmergencyStop", mock.Anything, "V1").Return(nil)
	vehicles.On("MarkStopped", mock.Anything, "V1").Return(errors.New("write failed"))

	_, err := svc.EmergencyStop(context.Background(), "V1")
	assert.ErrorIs(t, err, ErrStorage)
	rides.AssertNotCalled(t, "UpdateStatusForVehicle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
