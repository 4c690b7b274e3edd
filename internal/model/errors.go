package model

import "errors"

// Error taxonomy for the generator. Configuration and validation errors
// surface before any simulation work begins; solver errors are recorded
// per-row and only promoted to a run failure when every step fails.
var (
	// ErrUnknownProfile reports a profile identifier with no registered archetype.
	ErrUnknownProfile = errors.New("unknown profile")

	// ErrInvalidConfig reports a non-positive duration or resolution, a month
	// outside [1,12], or a malformed profile definition.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidEvent reports malformed event parameters at registration time,
	// such as a negative duration or a start beyond the simulation horizon.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrNotConverged reports that the hydraulic solver failed to converge for
	// a single timestep.
	ErrNotConverged = errors.New("solver did not converge")

	// ErrAllStepsFailed reports that the hydraulic solver converged at no
	// timestep of the run.
	ErrAllStepsFailed = errors.New("solver failed at every timestep")

	// ErrRunNotFound reports a run id that no store knows about.
	ErrRunNotFound = errors.New("run not found")
)
