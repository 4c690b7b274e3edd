package event

import (
	"fmt"
	"math"
	"math/rand"

	"HydroSpectra/internal/model"
)

// BlockageType classifies the obstruction process narrowing a pipe.
type BlockageType string

const (
	BlockageMineralBuildup BlockageType = "mineral_buildup"
	BlockageBiofilm        BlockageType = "biofilm"
	BlockageDebris         BlockageType = "debris"
)

// blockageClass holds the head-loss growth coefficients of one type.
// initial is the multiplier at onset, asymptote the saturation bound, and
// tauHours the growth time constant.
type blockageClass struct {
	initial   float64
	asymptote float64
	tauHours  float64
}

var blockageClasses = map[BlockageType]blockageClass{
	BlockageMineralBuildup: {initial: 1.0, asymptote: 6.0, tauHours: 540},
	BlockageBiofilm:        {initial: 1.0, asymptote: 3.0, tauHours: 240},
	BlockageDebris:         {initial: 2.2, asymptote: 4.5, tauHours: 24},
}

const blockageAsymptoteJitter = 0.1

// BlockageEvent scales friction head loss across a named pipe with a
// multiplier that grows with active time and saturates toward a
// class-specific asymptote, modeling a narrowing cross-section. Immutable
// after construction.
type BlockageEvent struct {
	blockageType  BlockageType
	pipe          string
	startHours    float64
	durationHours float64
	initial       float64
	asymptote     float64
	tauHours      float64
	seed          int64
}

// NewBlockage creates a blockage of the given type on a named pipe. Pass
// NoEnd as durationHours for an open-ended blockage. The seed jitters the
// saturation asymptote, reproducibly.
func NewBlockage(blockageType BlockageType, pipe string, startHours, durationHours float64, seed int64) (*BlockageEvent, error) {
	class, ok := blockageClasses[blockageType]
	if !ok {
		return nil, fmt.Errorf("%w: unknown blockage type %q", model.ErrInvalidEvent, blockageType)
	}
	if pipe == "" {
		return nil, fmt.Errorf("%w: blockage pipe is empty", model.ErrInvalidEvent)
	}
	if startHours < 0 {
		return nil, fmt.Errorf("%w: blockage start %v hours", model.ErrInvalidEvent, startHours)
	}
	if durationHours < 0 || math.IsNaN(durationHours) {
		return nil, fmt.Errorf("%w: blockage duration %v hours", model.ErrInvalidEvent, durationHours)
	}

	rng := rand.New(rand.NewSource(seed))
	jitter := 1 - blockageAsymptoteJitter + 2*blockageAsymptoteJitter*rng.Float64()
	asymptote := class.initial + (class.asymptote-class.initial)*jitter

	return &BlockageEvent{
		blockageType:  blockageType,
		pipe:          pipe,
		startHours:    startHours,
		durationHours: durationHours,
		initial:       class.initial,
		asymptote:     asymptote,
		tauHours:      class.tauHours,
		seed:          seed,
	}, nil
}

// Category identifies the variant.
func (b *BlockageEvent) Category() model.EventCategory { return model.CategoryBlockage }

// Type returns the obstruction class.
func (b *BlockageEvent) Type() BlockageType { return b.blockageType }

// StartHours returns the onset in hours from simulation start.
func (b *BlockageEvent) StartHours() float64 { return b.startHours }

// DurationHours returns the active-window length; +Inf means open-ended.
func (b *BlockageEvent) DurationHours() float64 { return b.durationHours }

// Location returns the pipe the blockage narrows.
func (b *BlockageEvent) Location() string { return b.pipe }

// ActiveAt reports activity over the half-open window [start, start+duration).
func (b *BlockageEvent) ActiveAt(tHours float64) bool {
	return tHours >= b.startHours && tHours < b.startHours+b.durationHours
}

// HeadLossMultiplierAt returns the friction multiplier after elapsedHours of
// active time. Starts at or above 1, never decreases, and saturates toward
// the class asymptote so arbitrarily long horizons stay physically plausible.
func (b *BlockageEvent) HeadLossMultiplierAt(elapsedHours float64) float64 {
	if elapsedHours < 0 {
		elapsedHours = 0
	}
	return b.initial + (b.asymptote-b.initial)*(1-math.Exp(-elapsedHours/b.tauHours))
}
