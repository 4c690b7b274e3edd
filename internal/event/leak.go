package event

import (
	"fmt"
	"math"
	"math/rand"

	"HydroSpectra/internal/model"
)

// NoEnd marks an event without a declared duration: it stays active for all
// time at or after its start. Positive infinity keeps the half-open window
// arithmetic uniform, since t < start+Inf holds for every finite t.
var NoEnd = math.Inf(1)

const (
	waterDensity     = 1000.0 // kg/m³
	dischargeCoeff   = 0.62   // sharp-edged orifice
	leakGrowthJitter = 0.3    // relative spread of the per-event growth coefficient
)

// LeakType classifies leak severity; it sets the initial aperture and how
// fast erosion widens it.
type LeakType string

const (
	LeakPinhole LeakType = "pinhole"
	LeakFissure LeakType = "fissure"
	LeakBurst   LeakType = "burst"
)

// leakClass holds the physical coefficients of one severity class.
type leakClass struct {
	baseAreaM2    float64 // initial orifice area
	growthPerHour float64 // relative aperture growth per active hour
}

var leakClasses = map[LeakType]leakClass{
	LeakPinhole: {baseAreaM2: 1.0e-6, growthPerHour: 0.020},
	LeakFissure: {baseAreaM2: 6.0e-6, growthPerHour: 0.012},
	LeakBurst:   {baseAreaM2: 5.0e-5, growthPerHour: 0.004},
}

// LeakEvent is a pressure-dependent outflow at a named node that widens with
// active time, modeling progressive erosion of the leak aperture. It is
// immutable after construction; queries have no side effects.
type LeakEvent struct {
	leakType      LeakType
	node          string
	startHours    float64
	durationHours float64
	baseAreaM2    float64
	growthPerHour float64
	seed          int64
}

// NewLeak creates a leak of the given severity class at a named node. Pass
// NoEnd as durationHours for an open-ended leak. The seed fixes the jitter on
// the growth coefficient so runs reproduce exactly.
func NewLeak(leakType LeakType, node string, startHours, durationHours float64, seed int64) (*LeakEvent, error) {
	class, ok := leakClasses[leakType]
	if !ok {
		return nil, fmt.Errorf("%w: unknown leak type %q", model.ErrInvalidEvent, leakType)
	}
	if node == "" {
		return nil, fmt.Errorf("%w: leak node is empty", model.ErrInvalidEvent)
	}
	if startHours < 0 {
		return nil, fmt.Errorf("%w: leak start %v hours", model.ErrInvalidEvent, startHours)
	}
	if durationHours < 0 || math.IsNaN(durationHours) {
		return nil, fmt.Errorf("%w: leak duration %v hours", model.ErrInvalidEvent, durationHours)
	}

	rng := rand.New(rand.NewSource(seed))
	jitter := 1 - leakGrowthJitter + 2*leakGrowthJitter*rng.Float64()

	return &LeakEvent{
		leakType:      leakType,
		node:          node,
		startHours:    startHours,
		durationHours: durationHours,
		baseAreaM2:    class.baseAreaM2,
		growthPerHour: class.growthPerHour * jitter,
		seed:          seed,
	}, nil
}

// Category identifies the variant.
func (l *LeakEvent) Category() model.EventCategory { return model.CategoryLeak }

// Type returns the severity class.
func (l *LeakEvent) Type() LeakType { return l.leakType }

// StartHours returns the onset in hours from simulation start.
func (l *LeakEvent) StartHours() float64 { return l.startHours }

// DurationHours returns the active-window length; +Inf means open-ended.
func (l *LeakEvent) DurationHours() float64 { return l.durationHours }

// Location returns the node the leak drains.
func (l *LeakEvent) Location() string { return l.node }

// ActiveAt reports activity over the half-open window [start, start+duration).
func (l *LeakEvent) ActiveAt(tHours float64) bool {
	return tHours >= l.startHours && tHours < l.startHours+l.durationHours
}

// FlowAt returns the leak outflow in m³/s after elapsedHours of active time
// under the given upstream pressure in Pa (gauge). Orifice flow through an
// aperture that erosion widens linearly with active time: strictly positive
// for any positive elapsed time and pressure, strictly increasing in both.
func (l *LeakEvent) FlowAt(elapsedHours, upstreamPressurePa float64) float64 {
	if elapsedHours < 0 {
		elapsedHours = 0
	}
	dp := upstreamPressurePa
	if dp <= 0 {
		return 0
	}
	area := l.baseAreaM2 * (1 + l.growthPerHour*elapsedHours)
	return dischargeCoeff * area * math.Sqrt(2*dp/waterDensity)
}
