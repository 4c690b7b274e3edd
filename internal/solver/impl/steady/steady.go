// Package steady resolves the hydraulic state of a branched supply tree one
// timestep at a time: a quasi-static balance in which the municipal service
// holds a fixed pressure at the root and every sampled instant is solved
// independently of the last.
package steady

import (
	"context"
	"fmt"
	"math"

	"HydroSpectra/internal/config"
	"HydroSpectra/internal/factory"
	"HydroSpectra/internal/model"
)

func init() {
	factory.RegisterSolver("steady", func(cfg *config.SolverConfig) (model.Solver, error) {
		return New(cfg), nil
	})
}

const (
	waterDensity   = 1000.0   // kg/m³
	waterViscosity = 1.002e-3 // Pa·s, cold supply water
	gravity        = 9.80665  // m/s²

	defaultTolerancePa   = 50.0
	defaultMaxIterations = 40

	// Fixed-point damping between leak-flow and pressure updates.
	underRelaxation = 0.75

	// Transition Reynolds number below which the loss law is laminar.
	laminarReynoldsLimit = 2300.0

	// A gauge pressure below perfect vacuum means the iteration has left the
	// physical regime entirely.
	minGaugePressurePa = -101325.0
)

// Solver computes per-step steady-state pressures, flows, and velocities for
// a tree-shaped network. Leak outflows depend on the pressure at their node,
// so each step runs a damped fixed-point iteration between the two until node
// pressures settle within tolerance.
type Solver struct {
	tolerancePa   float64
	maxIterations int
}

// New creates a steady-state solver. Zero config values fall back to the
// package defaults.
func New(cfg *config.SolverConfig) *Solver {
	s := &Solver{
		tolerancePa:   cfg.TolerancePa,
		maxIterations: cfg.MaxIterations,
	}
	if s.tolerancePa <= 0 {
		s.tolerancePa = defaultTolerancePa
	}
	if s.maxIterations <= 0 {
		s.maxIterations = defaultMaxIterations
	}
	return s
}

// Name returns the solver type name used in the factory registry.
func (s *Solver) Name() string { return "steady" }

// Solve balances the network for one instant. On a usable but unsettled
// iterate it returns the state with Converged=false; it returns an error only
// when no physical state could be produced at all.
func (s *Solver) Solve(ctx context.Context, in *model.SolveInput) (*model.SolveOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	net := in.Network
	if net == nil {
		return nil, fmt.Errorf("%w: solve input has no network", model.ErrInvalidConfig)
	}
	if in.SupplyPressurePa <= 0 {
		return nil, fmt.Errorf("%w: supply pressure %v Pa", model.ErrInvalidConfig, in.SupplyPressurePa)
	}
	for name := range in.Demands {
		if !net.HasNode(name) {
			return nil, fmt.Errorf("%w: demand at unknown node %q", model.ErrInvalidConfig, name)
		}
	}
	for _, leak := range in.Leaks {
		if !net.HasNode(leak.Node) {
			return nil, fmt.Errorf("%w: leak at unknown node %q", model.ErrInvalidConfig, leak.Node)
		}
	}
	lossScale := make(map[string]float64, len(in.Blockages))
	for _, blk := range in.Blockages {
		if _, ok := net.Pipe(blk.Pipe); !ok {
			return nil, fmt.Errorf("%w: blockage on unknown pipe %q", model.ErrInvalidConfig, blk.Pipe)
		}
		if lossScale[blk.Pipe] == 0 {
			lossScale[blk.Pipe] = 1
		}
		lossScale[blk.Pipe] *= blk.Multiplier
	}

	order, err := supplyOrder(net)
	if err != nil {
		return nil, err
	}

	// Initial iterate: the whole tree at service pressure. With no leaks the
	// first pressure pass is already exact and the loop exits on its second
	// trip with a zero delta.
	pressures := make(map[string]float64, len(net.Nodes))
	for _, node := range net.Nodes {
		pressures[node.Name] = in.SupplyPressurePa
	}

	var flows, velocities map[string]float64
	converged := false
	for iter := 0; iter < s.maxIterations; iter++ {
		flows, velocities = s.flowPass(net, order, in, pressures)
		raw := s.pressurePass(net, order, in.SupplyPressurePa, flows, velocities, lossScale)

		delta := 0.0
		for name, p := range raw {
			if math.IsNaN(p) || p < minGaugePressurePa {
				return nil, fmt.Errorf("%w: pressure at node %q left the physical range (%v Pa) on iteration %d",
					model.ErrNotConverged, name, p, iter)
			}
			if d := math.Abs(p - pressures[name]); d > delta {
				delta = d
			}
		}

		if delta <= s.tolerancePa {
			pressures = raw
			converged = true
			break
		}
		for name, p := range raw {
			pressures[name] += underRelaxation * (p - pressures[name])
		}
	}

	return &model.SolveOutput{
		Pressures:  pressures,
		Flows:      flows,
		Velocities: velocities,
		Converged:  converged,
	}, nil
}

// flowPass accumulates pipe flows leaf-to-root: each pipe carries the draw of
// every node in its downstream subtree, including pressure-dependent leak
// outflows evaluated against the current pressure iterate.
func (s *Solver) flowPass(net *model.Network, order []string, in *model.SolveInput, pressures map[string]float64) (map[string]float64, map[string]float64) {
	outflow := make(map[string]float64, len(net.Nodes))
	for name, q := range in.Demands {
		outflow[name] += q
	}
	for _, leak := range in.Leaks {
		outflow[leak.Node] += leak.FlowAt(pressures[leak.Node])
	}

	flows := make(map[string]float64, len(net.Pipes))
	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		total := outflow[name]
		for _, pipe := range net.Downstream(name) {
			total += flows[pipe.Name]
		}
		if pipe, ok := net.Inflow(name); ok {
			flows[pipe.Name] = total
		}
	}

	velocities := make(map[string]float64, len(net.Pipes))
	for _, pipe := range net.Pipes {
		velocities[pipe.Name] = flows[pipe.Name] / pipe.Area()
	}
	return flows, velocities
}

// pressurePass walks root-to-leaf, dropping friction loss (scaled by any
// blockage multiplier) and elevation head across each pipe.
func (s *Solver) pressurePass(net *model.Network, order []string, supplyPa float64, flows, velocities, lossScale map[string]float64) map[string]float64 {
	pressures := make(map[string]float64, len(net.Nodes))
	pressures[net.Supply] = supplyPa

	for _, name := range order {
		if name == net.Supply {
			continue
		}
		pipe, _ := net.Inflow(name)
		parent, _ := net.Node(pipe.From)
		child, _ := net.Node(name)

		loss := frictionLossPa(pipe, velocities[pipe.Name])
		if scale, ok := lossScale[pipe.Name]; ok {
			loss *= scale
		}
		head := waterDensity * gravity * (child.ElevationM - parent.ElevationM)
		pressures[name] = pressures[pipe.From] - loss - head
	}
	return pressures
}

// supplyOrder returns node names in breadth-first order from the supply root.
func supplyOrder(net *model.Network) ([]string, error) {
	order := make([]string, 0, len(net.Nodes))
	queue := []string{net.Supply}
	seen := map[string]bool{net.Supply: true}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)
		for _, pipe := range net.Downstream(name) {
			if !seen[pipe.To] {
				seen[pipe.To] = true
				queue = append(queue, pipe.To)
			}
		}
	}
	if len(order) != len(net.Nodes) {
		return nil, fmt.Errorf("%w: %d of %d nodes unreachable from supply %q",
			model.ErrInvalidConfig, len(net.Nodes)-len(order), len(net.Nodes), net.Supply)
	}
	return order, nil
}

// frictionLossPa returns the pressure drop across a pipe at the given mean
// velocity. Laminar flow uses the Hagen-Poiseuille closed form; turbulent
// flow uses Darcy-Weisbach with the Swamee-Jain friction factor.
func frictionLossPa(pipe model.Pipe, velocity float64) float64 {
	if velocity <= 0 {
		return 0
	}
	re := waterDensity * velocity * pipe.DiameterM / waterViscosity
	if re < laminarReynoldsLimit {
		return 32 * waterViscosity * pipe.LengthM * velocity / (pipe.DiameterM * pipe.DiameterM)
	}
	f := swameeJain(pipe.RoughnessM/pipe.DiameterM, re)
	return f * pipe.LengthM / pipe.DiameterM * waterDensity * velocity * velocity / 2
}

// swameeJain approximates the Colebrook-White friction factor for turbulent
// pipe flow.
func swameeJain(relRoughness, re float64) float64 {
	d := math.Log10(relRoughness/3.7 + 5.74/math.Pow(re, 0.9))
	return 0.25 / (d * d)
}
