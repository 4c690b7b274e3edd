package model

import "context"

// LeakPerturbation is an extra pressure-dependent outflow at a named node.
// FlowAt returns the leak outflow in m³/s for a candidate node pressure in
// Pa, which lets the solver couple leak flow and node pressure within a
// single step instead of lagging one behind the other.
type LeakPerturbation struct {
	Node   string
	FlowAt func(pressurePa float64) float64
}

// BlockagePerturbation scales the friction head loss across a named pipe.
// The multiplier is ≥ 1.
type BlockagePerturbation struct {
	Pipe       string
	Multiplier float64
}

// SolveInput carries everything a solver needs for one timestep.
type SolveInput struct {
	Network *Network
	TimeS   float64

	// SupplyPressurePa is the gauge pressure held at the supply node.
	SupplyPressurePa float64

	// Demands holds the metered household draw per node in m³/s.
	Demands map[string]float64

	Leaks     []LeakPerturbation
	Blockages []BlockagePerturbation
}

// SolveOutput is the hydraulic state of the network at one instant.
type SolveOutput struct {
	Pressures  map[string]float64 // Pa, per node
	Flows      map[string]float64 // m³/s, per pipe
	Velocities map[string]float64 // m/s, per pipe
	Converged  bool
}

// Solver computes the hydraulic state of a network for a single timestep.
// Implementations may carry state between calls (transient dynamics); each
// instance belongs to exactly one run and is used sequentially.
type Solver interface {
	Solve(ctx context.Context, in *SolveInput) (*SolveOutput, error)
	Name() string
}
