package event

import (
	"fmt"

	"HydroSpectra/internal/model"
)

// Scheduler owns the degradation events registered for one simulation run.
// Events are validated at registration and never mutated afterwards; queries
// are pure functions of the registered set and the query time. Overlapping
// events are permitted and expected.
//
// Lookup is a linear scan over the registered events, which is exact and
// plenty for per-run event counts; an interval index would only pay off far
// beyond the scale a single house sees.
type Scheduler struct {
	horizonHours float64
	events       []model.Event
}

// NewScheduler creates a scheduler for a run spanning horizonHours. A zero or
// negative horizon disables the start-within-horizon check.
func NewScheduler(horizonHours float64) *Scheduler {
	return &Scheduler{horizonHours: horizonHours}
}

// AddLeak registers a leak event.
func (s *Scheduler) AddLeak(l *LeakEvent) error {
	return s.add(l)
}

// AddBlockage registers a blockage event.
func (s *Scheduler) AddBlockage(b *BlockageEvent) error {
	return s.add(b)
}

func (s *Scheduler) add(e model.Event) error {
	if s.horizonHours > 0 && e.StartHours() > s.horizonHours {
		return fmt.Errorf("%w: start %v hours is beyond the %v hour horizon",
			model.ErrInvalidEvent, e.StartHours(), s.horizonHours)
	}
	s.events = append(s.events, e)
	return nil
}

// ActiveAt returns every registered event active at tHours, in registration
// order. An event with start s and duration d is active for t in [s, s+d);
// the inclusive lower and exclusive upper bound avoid double counting at
// exact boundary instants. Open-ended events are active for all t >= s.
func (s *Scheduler) ActiveAt(tHours float64) []model.ActiveEvent {
	var active []model.ActiveEvent
	for _, e := range s.events {
		if e.ActiveAt(tHours) {
			active = append(active, model.ActiveEvent{Category: e.Category(), Event: e})
		}
	}
	return active
}

// LeakActiveAt reports whether any leak event is active at tHours; it drives
// the output table's leak indicator column.
func (s *Scheduler) LeakActiveAt(tHours float64) bool {
	for _, e := range s.events {
		if e.Category() == model.CategoryLeak && e.ActiveAt(tHours) {
			return true
		}
	}
	return false
}

// Events returns the registered events in registration order.
func (s *Scheduler) Events() []model.Event {
	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Len returns the number of registered events.
func (s *Scheduler) Len() int {
	return len(s.events)
}
