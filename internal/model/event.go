package model

// EventCategory tags the kind of degradation process an event models.
type EventCategory string

const (
	CategoryLeak     EventCategory = "leak"
	CategoryBlockage EventCategory = "blockage"
)

// Event is the scheduling contract shared by every degradation event. The
// concrete variants are the leak and blockage value objects in internal/event;
// they are registered once and only queried afterwards.
type Event interface {
	// Category identifies the variant.
	Category() EventCategory

	// StartHours is the event's onset, in hours from the simulation start.
	StartHours() float64

	// ActiveAt reports whether the event is active at t, over the half-open
	// window [start, start+duration). An event without a duration never ends.
	ActiveAt(tHours float64) bool

	// Location names the node (leaks) or pipe (blockages) the event degrades.
	Location() string
}

// ActiveEvent pairs an event with its category in scheduler query results.
type ActiveEvent struct {
	Category EventCategory
	Event    Event
}
