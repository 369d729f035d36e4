package dispatch

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/robo-ride/internal/db"
	"github.com/ukydev/robo-ride/internal/models"
	"github.com/ukydev/robo-ride/internal/observability"
)

// EmergencyStop halts a vehicle and cascades the stop to its active rides:
// the stop command goes out first, then the registry records speed=0, then
// every confirmed or in-progress ride for the vehicle becomes
// emergency_stopped. Returns the number of rides transitioned.
//
// If the ledger update fails after the registry write, the speed=0 mutation
// is deliberately not undone (a stopped vehicle must stay stopped); the
// partial state is surfaced as ErrPartialConsistency instead.
func (s *Service) EmergencyStop(ctx context.Context, vehicleID string) (int64, error) {
	if _, err := s.vehicles.FindByID(ctx, vehicleID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := s.commander.SendEmergencyStop(ctx, vehicleID); err != nil {
		observability.EmergencyStopsTotal.WithLabelValues("gateway_failed").Inc()
		observability.GatewayFailuresTotal.Inc()
		return 0, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	if err := s.vehicles.MarkStopped(ctx, vehicleID); err != nil {
		observability.EmergencyStopsTotal.WithLabelValues("storage_failed").Inc()
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	stopped, err := s.rides.UpdateStatusForVehicle(ctx, vehicleID,
		[]string{models.StatusConfirmed, models.StatusInProgress},
		models.StatusEmergencyStopped,
	)
	if err != nil {
		observability.EmergencyStopsTotal.WithLabelValues("partial").Inc()
		observability.ConsistencyDriftTotal.Inc()
		s.log.WithFields(log.Fields{
			"vehicle_id": vehicleID,
			"error":      err,
		}).Error("vehicle stopped but ride statuses not updated")
		return 0, fmt.Errorf("%w: vehicle %s stopped but its rides were not updated", ErrPartialConsistency, vehicleID)
	}

	observability.EmergencyStopsTotal.WithLabelValues("stopped").Inc()
	s.log.WithFields(log.Fields{
		"vehicle_id":    vehicleID,
		"rides_stopped": stopped,
	}).Warn("emergency stop triggered")
	return stopped, nil
}
