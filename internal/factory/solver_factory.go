package factory

import (
	"HydroSpectra/internal/config"
	"HydroSpectra/internal/model"
	"fmt"
)

// SolverFactory defines a function that creates a hydraulic solver instance.
type SolverFactory func(cfg *config.SolverConfig) (model.Solver, error)

// registry holds the mapping of solver types to their factory functions.
var registry = make(map[string]SolverFactory)

// RegisterSolver registers a new solver type with its factory function.
func RegisterSolver(name string, factory SolverFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("solver type '%s' already registered", name))
	}
	registry[name] = factory
}

// Create instantiates the named solver type. Solvers may carry per-run state,
// so every simulation run gets a fresh instance.
func Create(name string, cfg *config.SolverConfig) (model.Solver, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown solver type: '%s'", name)
	}

	solver, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating solver type '%s': %w", name, err)
	}

	return solver, nil
}
