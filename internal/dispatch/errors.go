package dispatch

import "errors"

// Failure kinds surfaced by the coordinators. Callers distinguish them with
// errors.Is; nothing is retried automatically here — retry policy belongs to
// the caller.
var (
	// ErrValidation: bad input, rejected before any side effect.
	ErrValidation = errors.New("invalid booking request")
	// ErrNoVehicleAvailable: no vehicle could be selected; no side effects.
	ErrNoVehicleAvailable = errors.New("no vehicles available")
	// ErrGateway: the command never reached the vehicle or was rejected.
	// Any vehicle claim made before the command has been compensated.
	ErrGateway = errors.New("vehicle command failed")
	// ErrStorage: a registry or ledger read/write failed.
	ErrStorage = errors.New("storage failure")
	// ErrPartialConsistency: a write succeeded but a dependent write (or its
	// compensation) failed, leaving registry and ledger out of step. Logged
	// with both ids so operators can reconcile the drift.
	ErrPartialConsistency = errors.New("registry and ledger are out of step")
	// ErrRideNotActive: completion requested for a ride that is not in a
	// completable status.
	ErrRideNotActive = errors.New("ride is not active")
)
