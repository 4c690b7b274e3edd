package profile

import (
	"fmt"
	"math"

	"HydroSpectra/internal/model"
)

// Fixture describes one water-using appliance of a house archetype. Uses
// arrive as a Poisson process thinned by the profile's diurnal weights.
type Fixture struct {
	Name          string  `yaml:"name"`
	UsesPerDay    float64 `yaml:"uses_per_day"`
	MeanDurationS float64 `yaml:"mean_duration_s"`
	FlowLPM       float64 `yaml:"flow_lpm"`
}

// Envelope bounds the nominal daily volume a household of this archetype
// draws, in liters.
type Envelope struct {
	MinDailyLiters float64 `yaml:"min_daily_liters"`
	MaxDailyLiters float64 `yaml:"max_daily_liters"`
}

// NodeDef is a junction of the topology template.
type NodeDef struct {
	Name        string  `yaml:"name"`
	DemandShare float64 `yaml:"demand_share"`
	ElevationM  float64 `yaml:"elevation_m"`
}

// PipeDef is a directed segment of the topology template.
type PipeDef struct {
	From       string  `yaml:"from"`
	To         string  `yaml:"to"`
	DiameterM  float64 `yaml:"diameter_m"`
	LengthM    float64 `yaml:"length_m"`
	Material   string  `yaml:"material"`
	RoughnessM float64 `yaml:"roughness_m"`
}

// Profile bundles the demand envelope, fixture mix, and topology template of
// one house archetype. Profiles are immutable once registered.
type Profile struct {
	ID               string     `yaml:"id"`
	Description      string     `yaml:"description"`
	Envelope         Envelope   `yaml:"envelope"`
	Fixtures         []Fixture  `yaml:"fixtures"`
	DiurnalWeights   []float64  `yaml:"diurnal_weights"` // 24 hourly weights, any positive scale
	SupplyPressurePa float64    `yaml:"supply_pressure_pa"`
	SupplyNode       string     `yaml:"supply_node"`
	MeterPipe        string     `yaml:"meter_pipe"`
	Nodes            []NodeDef  `yaml:"nodes"`
	Pipes            []PipeDef  `yaml:"pipes"`
	Attributes       Attributes `yaml:"attributes"`
}

// Store maps profile identifiers to registered archetypes. A new store is
// seeded with the built-in archetypes; additional profiles can be loaded from
// a YAML file.
type Store struct {
	profiles map[string]*Profile
	order    []string
}

// NewStore creates a store seeded with the built-in house archetypes.
func NewStore() *Store {
	s := &Store{profiles: make(map[string]*Profile)}
	for _, p := range builtins() {
		// Built-ins are authored in this package; a validation failure here is
		// a programming error.
		if err := s.register(p); err != nil {
			panic(fmt.Sprintf("built-in profile %q is invalid: %v", p.ID, err))
		}
	}
	return s
}

// Get returns the profile registered under id.
func (s *Store) Get(id string) (*Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownProfile, id)
	}
	return p, nil
}

// Names returns the registered profile identifiers in registration order.
func (s *Store) Names() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// register validates and stores a profile. Re-registering an id replaces the
// previous definition, which lets a profiles file override a built-in.
func (s *Store) register(p *Profile) error {
	if err := validate(p); err != nil {
		return err
	}
	if _, exists := s.profiles[p.ID]; !exists {
		s.order = append(s.order, p.ID)
	}
	s.profiles[p.ID] = p
	return nil
}

// validate checks the structural invariants a profile must satisfy before any
// simulation consumes it.
func validate(p *Profile) error {
	if p.ID == "" {
		return fmt.Errorf("%w: profile id is empty", model.ErrInvalidConfig)
	}
	if p.Envelope.MinDailyLiters <= 0 || p.Envelope.MaxDailyLiters < p.Envelope.MinDailyLiters {
		return fmt.Errorf("%w: profile %q has envelope [%v, %v]", model.ErrInvalidConfig,
			p.ID, p.Envelope.MinDailyLiters, p.Envelope.MaxDailyLiters)
	}
	if p.SupplyPressurePa <= 0 {
		return fmt.Errorf("%w: profile %q has supply pressure %v Pa", model.ErrInvalidConfig, p.ID, p.SupplyPressurePa)
	}
	if len(p.DiurnalWeights) != 0 && len(p.DiurnalWeights) != 24 {
		return fmt.Errorf("%w: profile %q has %d diurnal weights, want 24", model.ErrInvalidConfig, p.ID, len(p.DiurnalWeights))
	}
	if len(p.Nodes) == 0 {
		return fmt.Errorf("%w: profile %q declares no nodes", model.ErrInvalidConfig, p.ID)
	}

	nodes := make(map[string]bool, len(p.Nodes))
	shareSum := 0.0
	for _, n := range p.Nodes {
		if n.Name == "" {
			return fmt.Errorf("%w: profile %q has an unnamed node", model.ErrInvalidConfig, p.ID)
		}
		if nodes[n.Name] {
			return fmt.Errorf("%w: profile %q declares node %q twice", model.ErrInvalidConfig, p.ID, n.Name)
		}
		nodes[n.Name] = true
		shareSum += n.DemandShare
	}
	if !nodes[p.SupplyNode] {
		return fmt.Errorf("%w: profile %q supply node %q is not declared", model.ErrInvalidConfig, p.ID, p.SupplyNode)
	}
	if math.Abs(shareSum-1.0) > 0.01 {
		return fmt.Errorf("%w: profile %q demand shares sum to %.3f, want 1", model.ErrInvalidConfig, p.ID, shareSum)
	}

	meterPipeFound := false
	for _, pipe := range p.Pipes {
		if !nodes[pipe.From] || !nodes[pipe.To] {
			return fmt.Errorf("%w: profile %q pipe %s->%s references an undeclared node",
				model.ErrInvalidConfig, p.ID, pipe.From, pipe.To)
		}
		if pipe.DiameterM <= 0 || pipe.LengthM <= 0 {
			return fmt.Errorf("%w: profile %q pipe %s->%s has non-positive geometry",
				model.ErrInvalidConfig, p.ID, pipe.From, pipe.To)
		}
		if fmt.Sprintf("%s->%s", pipe.From, pipe.To) == p.MeterPipe {
			meterPipeFound = true
		}
	}
	if p.MeterPipe != "" && !meterPipeFound {
		return fmt.Errorf("%w: profile %q meter pipe %q is not declared", model.ErrInvalidConfig, p.ID, p.MeterPipe)
	}
	return nil
}
