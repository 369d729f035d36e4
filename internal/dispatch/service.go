package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/robo-ride/internal/db"
	"github.com/ukydev/robo-ride/internal/gateway"
	"github.com/ukydev/robo-ride/internal/geo"
	"github.com/ukydev/robo-ride/internal/models"
	"github.com/ukydev/robo-ride/internal/observability"
)

// MaxPassengers is the hard per-ride cap the fleet hardware supports.
const MaxPassengers = 10

// Service coordinates bookings, ride completion and emergency stops across
// the vehicle registry, the ride ledger and the vehicle command gateway. It
// is the only writer that must keep registry and ledger consistent; it does
// so with compensating actions rather than cross-collection transactions.
type Service struct {
	vehicles  db.VehicleRegistry
	rides     db.RideLedger
	commander gateway.Commander
	log       log.FieldLogger

	// now is swapped in tests for deterministic ride references.
	now func() time.Time
}

// NewService wires a dispatch service.
func NewService(vehicles db.VehicleRegistry, rides db.RideLedger, commander gateway.Commander, logger log.FieldLogger) *Service {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Service{
		vehicles:  vehicles,
		rides:     rides,
		commander: commander,
		log:       logger,
		now:       time.Now,
	}
}

// Book runs the booking state machine: validate, atomically claim a vehicle,
// command it to the pickup point, then record the ride. Every failure after
// the claim triggers a compensating release so a vehicle is never consumed
// by a booking that did not produce a ride.
func (s *Service) Book(ctx context.Context, req models.BookingRequest) (*models.Ride, error) {
	if err := validate(req); err != nil {
		observability.BookingsTotal.WithLabelValues("validation_failed").Inc()
		return nil, err
	}

	rideRef := fmt.Sprintf("RIDE_%d", s.now().UnixMilli())
	vehicle, err := s.vehicles.ClaimAvailable(ctx, req.PickupLocation, rideRef)
	if err != nil {
		if errors.Is(err, db.ErrNoneAvailable) {
			observability.BookingsTotal.WithLabelValues("no_vehicle").Inc()
			return nil, ErrNoVehicleAvailable
		}
		observability.BookingsTotal.WithLabelValues("storage_failed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := s.commander.SendMoveToPickup(ctx, vehicle.VehicleID, *req.PickupLocation); err != nil {
		observability.BookingsTotal.WithLabelValues("gateway_failed").Inc()
		observability.GatewayFailuresTotal.Inc()
		if relErr := s.release(ctx, vehicle.VehicleID, rideRef, "move command failed"); relErr != nil {
			return nil, relErr
		}
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	ride := models.Ride{
		PickupLocation:      *req.PickupLocation,
		DestinationLocation: *req.DestinationLocation,
		PassengerCount:      req.PassengerCount,
		RFIDVerified:        req.RFIDVerified,
		Status:              models.StatusConfirmed,
		EstimatedTime:       req.EstimatedTime,
		Fare:                req.Fare,
		VehicleID:           vehicle.VehicleID,
	}
	fillEstimates(&ride)

	stored, err := s.rides.Insert(ctx, ride)
	if err != nil {
		observability.BookingsTotal.WithLabelValues("storage_failed").Inc()
		if relErr := s.release(ctx, vehicle.VehicleID, rideRef, "ride insert failed"); relErr != nil {
			return nil, relErr
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	observability.BookingsTotal.WithLabelValues("confirmed").Inc()
	s.log.WithFields(log.Fields{
		"vehicle_id": vehicle.VehicleID,
		"ride_id":    stored.ID.Hex(),
		"ride_ref":   rideRef,
	}).Info("ride dispatched")
	return stored, nil
}

// CompleteRide moves a ride to completed and makes its vehicle available
// again. Only confirmed and in-progress rides can complete.
func (s *Service) CompleteRide(ctx context.Context, rideID string) (*models.Ride, error) {
	ride, err := s.rides.FindByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if !models.IsActiveStatus(ride.Status) {
		return nil, fmt.Errorf("%w: ride %s is %s", ErrRideNotActive, rideID, ride.Status)
	}

	if err := s.rides.SetStatus(ctx, rideID, models.StatusCompleted); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if err := s.vehicles.Release(ctx, ride.VehicleID); err != nil {
		observability.ConsistencyDriftTotal.Inc()
		s.log.WithFields(log.Fields{
			"vehicle_id": ride.VehicleID,
			"ride_id":    rideID,
			"error":      err,
		}).Error("ride completed but vehicle release failed")
		return nil, fmt.Errorf("%w: ride %s completed but vehicle %s not released", ErrPartialConsistency, rideID, ride.VehicleID)
	}

	ride.Status = models.StatusCompleted
	return ride, nil
}

// release is the compensating action for a claimed vehicle. A failed release
// is the one place dispatch can leave drift, so it is reported distinctly.
func (s *Service) release(ctx context.Context, vehicleID, rideRef, reason string) error {
	if err := s.vehicles.Release(ctx, vehicleID); err != nil {
		observability.ConsistencyDriftTotal.Inc()
		s.log.WithFields(log.Fields{
			"vehicle_id": vehicleID,
			"ride_ref":   rideRef,
			"reason":     reason,
			"error":      err,
		}).Error("compensating release failed, vehicle left unavailable")
		return fmt.Errorf("%w: vehicle %s left claimed for %s", ErrPartialConsistency, vehicleID, rideRef)
	}
	return nil
}

func validate(req models.BookingRequest) error {
	if req.PickupLocation == nil || req.DestinationLocation == nil {
		return fmt.Errorf("%w: pickup and destination locations are required", ErrValidation)
	}
	if req.PassengerCount < 1 {
		return fmt.Errorf("%w: at least one passenger required", ErrValidation)
	}
	if req.PassengerCount > MaxPassengers {
		return fmt.Errorf("%w: maximum %d passengers allowed per ride", ErrValidation, MaxPassengers)
	}
	return nil
}

// fillEstimates derives fare and ETA from trip distance when the request
// didn't supply them; client-provided values pass through untouched.
func fillEstimates(ride *models.Ride) {
	dist := geo.Haversine(
		ride.PickupLocation.Lat, ride.PickupLocation.Lng,
		ride.DestinationLocation.Lat, ride.DestinationLocation.Lng,
	)
	if ride.Fare == 0 {
		ride.Fare = geo.EstimateFare(dist)
	}
	if ride.EstimatedTime == 0 {
		ride.EstimatedTime = geo.EstimateMinutes(dist)
	}
}
