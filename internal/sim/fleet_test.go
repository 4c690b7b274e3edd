package sim

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"HydroSpectra/internal/config"
	"HydroSpectra/internal/model"
)

// captureWriter records every result it is handed. The fleet's collector is
// the only goroutine that writes, so no locking is needed.
type captureWriter struct {
	results []*model.Result
	closed  bool
}

func (w *captureWriter) Name() string { return "capture" }

func (w *captureWriter) Write(_ context.Context, result *model.Result) error {
	w.results = append(w.results, result)
	return nil
}

func (w *captureWriter) Close() error {
	w.closed = true
	return nil
}

// failingWriter always rejects, to prove a bad sink never sinks the fleet.
type failingWriter struct{}

func (failingWriter) Name() string                               { return "failing" }
func (failingWriter) Write(context.Context, *model.Result) error { return fmt.Errorf("sink offline") }
func (failingWriter) Close() error                               { return nil }

func fleetConfig(houses ...config.HouseDef) *config.Config {
	return &config.Config{
		Generator: config.GeneratorConfig{
			NumWorkers: 2,
			Houses:     houses,
		},
	}
}

func lightHouseDef(id string, seed int64) config.HouseDef {
	return config.HouseDef{
		HouseID:           id,
		Profile:           "modern_pex_small",
		StartTime:         "2025-07-14T00:00:00Z",
		DurationSeconds:   120,
		ResolutionSeconds: 10,
		Seed:              seed,
		LightMode:         true,
	}
}

func TestFleetRunsAllHouses(t *testing.T) {
	defs := []config.HouseDef{
		lightHouseDef("house-001", 1),
		lightHouseDef("house-002", 2),
		lightHouseDef("house-003", 3),
	}
	defs[1].Profile = "legacy_copper_medium"

	capture := &captureWriter{}
	fleet := NewFleet(fleetConfig(defs...), nil, []model.Writer{capture})
	if err := fleet.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(capture.results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(capture.results))
	}
	seen := make(map[string]bool)
	runIDs := make(map[string]bool)
	for _, result := range capture.results {
		seen[result.HouseID] = true
		if runIDs[result.RunID] {
			t.Errorf("Duplicate run id %s", result.RunID)
		}
		runIDs[result.RunID] = true
		if len(result.Rows) != 13 {
			t.Errorf("House %s: expected 13 rows, got %d", result.HouseID, len(result.Rows))
		}
	}
	for _, def := range defs {
		if !seen[def.HouseID] {
			t.Errorf("No result for %s", def.HouseID)
		}
	}
}

func TestFleetAppliesEventDefs(t *testing.T) {
	def := lightHouseDef("house-leaky", 9)
	def.DurationSeconds = 3600
	def.ResolutionSeconds = 60
	def.Leaks = []config.LeakDef{{Type: "burst", Node: "Kitchen", StartHours: 0}} // open-ended
	def.Blockages = []config.BlockageDef{{Type: "debris", Pipe: "Manifold->Laundry", StartHours: 0.25}}

	capture := &captureWriter{}
	fleet := NewFleet(fleetConfig(def), nil, []model.Writer{capture})
	if err := fleet.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(capture.results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(capture.results))
	}

	result := capture.results[0]
	if got := result.LeakRows(); got != len(result.Rows) {
		t.Errorf("A zero-duration leak def must stay active to the end: %d of %d rows flagged",
			got, len(result.Rows))
	}
}

func TestFleetSetupErrorFailsFast(t *testing.T) {
	bad := lightHouseDef("house-002", 1)
	bad.Profile = "castle"

	capture := &captureWriter{}
	fleet := NewFleet(fleetConfig(lightHouseDef("house-001", 1), bad), nil, []model.Writer{capture})
	err := fleet.Run(context.Background())
	if !errors.Is(err, model.ErrUnknownProfile) {
		t.Fatalf("Expected ErrUnknownProfile, got %v", err)
	}
	if len(capture.results) != 0 {
		t.Error("A setup error must fail the fleet before any run is written")
	}
}

func TestFleetRejectsEmptyConfig(t *testing.T) {
	fleet := NewFleet(fleetConfig(), nil, nil)
	if err := fleet.Run(context.Background()); !errors.Is(err, model.ErrInvalidConfig) {
		t.Fatalf("Expected ErrInvalidConfig with no houses, got %v", err)
	}
}

func TestFleetSurvivesFailingWriter(t *testing.T) {
	capture := &captureWriter{}
	fleet := NewFleet(fleetConfig(lightHouseDef("house-001", 4)), nil,
		[]model.Writer{failingWriter{}, capture})
	if err := fleet.Run(context.Background()); err != nil {
		t.Fatalf("A failing writer must not fail the fleet: %v", err)
	}
	if len(capture.results) != 1 {
		t.Errorf("Healthy writer expected 1 result, got %d", len(capture.results))
	}
}

func TestFleetRejectsBadStartTime(t *testing.T) {
	def := lightHouseDef("house-001", 1)
	def.StartTime = "July 14th"
	fleet := NewFleet(fleetConfig(def), nil, nil)
	if err := fleet.Run(context.Background()); !errors.Is(err, model.ErrInvalidConfig) {
		t.Fatalf("Expected ErrInvalidConfig for a malformed start time, got %v", err)
	}
}
