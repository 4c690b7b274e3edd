// Package transient layers water-hammer dynamics on top of the steady-state
// balance. Abrupt velocity changes between consecutive steps launch Joukowsky
// pressure surges at the pipe's downstream junction; each surge rings at the
// pipe's quarter-wave period and decays exponentially until it drops below
// the audible floor.
package transient

import (
	"context"
	"math"

	"HydroSpectra/internal/config"
	"HydroSpectra/internal/factory"
	"HydroSpectra/internal/model"
	"HydroSpectra/internal/solver/impl/steady"
)

func init() {
	factory.RegisterSolver("transient", func(cfg *config.SolverConfig) (model.Solver, error) {
		return New(cfg), nil
	})
}

const (
	waterDensity = 1000.0 // kg/m³

	defaultSurgeDampingS = 8.0

	// Velocity steps smaller than this are ordinary demand drift, not a
	// valve event.
	velocityJumpThreshold = 0.05 // m/s

	// Surges whose envelope has decayed below this are dropped.
	surgeFloorPa = 100.0

	// Clamp for surge troughs; gauge pressure cannot fall below vacuum.
	minGaugePressurePa = -101325.0
)

// Pressure wave speeds by pipe material, m/s. Elastic PEX absorbs most of a
// hammer wave; rigid metals barely attenuate it.
var waveSpeeds = map[string]float64{
	"pex":        350,
	"copper":     1250,
	"galvanized": 1300,
}

const defaultWaveSpeed = 1000.0

// surge is one in-flight pressure wave anchored at a junction.
type surge struct {
	node        string
	amplitudePa float64
	bornAtS     float64
	periodS     float64
}

// Solver augments the steady-state solve with decaying pressure surges. It
// carries velocity history between calls, so an instance belongs to exactly
// one run and must see its steps in time order.
type Solver struct {
	base          *steady.Solver
	surgeDampingS float64

	prevVelocities map[string]float64
	surges         []surge
}

// New creates a transient solver. Zero config values fall back to the package
// defaults.
func New(cfg *config.SolverConfig) *Solver {
	s := &Solver{
		base:          steady.New(cfg),
		surgeDampingS: cfg.SurgeDampingS,
	}
	if s.surgeDampingS <= 0 {
		s.surgeDampingS = defaultSurgeDampingS
	}
	return s
}

// Name returns the solver type name used in the factory registry.
func (s *Solver) Name() string { return "transient" }

// Solve computes the steady balance for the instant, then detects velocity
// jumps against the previous step and superimposes the resulting surges. A
// failed or unsettled base solve clears the surge state, since there is no
// trustworthy baseline to difference against.
func (s *Solver) Solve(ctx context.Context, in *model.SolveInput) (*model.SolveOutput, error) {
	out, err := s.base.Solve(ctx, in)
	if err != nil {
		s.reset()
		return nil, err
	}
	if !out.Converged {
		s.reset()
		return out, nil
	}

	if s.prevVelocities != nil {
		for _, pipe := range in.Network.Pipes {
			dv := out.Velocities[pipe.Name] - s.prevVelocities[pipe.Name]
			if math.Abs(dv) < velocityJumpThreshold {
				continue
			}
			a := waveSpeed(pipe.Material)
			s.surges = append(s.surges, surge{
				node: pipe.To,
				// Joukowsky: a closing draw (dv < 0) spikes the pressure,
				// an opening draw dips it.
				amplitudePa: -waterDensity * a * dv,
				bornAtS:     in.TimeS,
				periodS:     4 * pipe.LengthM / a,
			})
		}
	}

	s.applySurges(out.Pressures, in.TimeS)

	s.prevVelocities = make(map[string]float64, len(out.Velocities))
	for name, v := range out.Velocities {
		s.prevVelocities[name] = v
	}
	return out, nil
}

// applySurges adds every live surge to its junction's pressure and prunes the
// ones that have rung out.
func (s *Solver) applySurges(pressures map[string]float64, nowS float64) {
	kept := s.surges[:0]
	for _, sg := range s.surges {
		age := nowS - sg.bornAtS
		envelope := sg.amplitudePa * math.Exp(-age/s.surgeDampingS)
		if math.Abs(envelope) < surgeFloorPa {
			continue
		}
		pressures[sg.node] += envelope * math.Cos(2*math.Pi*age/sg.periodS)
		kept = append(kept, sg)
	}
	s.surges = kept

	for node, p := range pressures {
		if p < minGaugePressurePa {
			pressures[node] = minGaugePressurePa
		}
	}
}

func (s *Solver) reset() {
	s.prevVelocities = nil
	s.surges = nil
}

func waveSpeed(material string) float64 {
	if a, ok := waveSpeeds[material]; ok {
		return a
	}
	return defaultWaveSpeed
}
