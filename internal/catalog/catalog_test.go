package catalog

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"HydroSpectra/internal/model"
)

func testResult(runID, houseID, profile string, leakRows int) *model.Result {
	start, _ := time.Parse(time.RFC3339, "2025-07-14T00:00:00Z")
	rows := make([]model.Row, 10)
	for i := range rows {
		rows[i] = model.Row{TimeS: float64(i) * 60, Flow: 2.5, Pressure: 44, Converged: true}
		if i < leakRows {
			rows[i].Leak = true
		}
	}
	return &model.Result{
		RunID:             runID,
		HouseID:           houseID,
		Profile:           profile,
		StartTime:         start,
		DurationSeconds:   540,
		ResolutionSeconds: 60,
		Seed:              42,
		LightMode:         true,
		Rows:              rows,
	}
}

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Failed to open catalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })
	return cat
}

func TestCatalogRecordAndLoad(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	// 1. Record a run with 4 leak rows out of 10.
	result := testResult("run-a", "house-001", "modern_pex_small", 4)
	if err := cat.Write(ctx, result); err != nil {
		t.Fatalf("Failed to record run: %v", err)
	}

	// 2. Load it back and check every field survived.
	entry, err := cat.Run(ctx, "run-a")
	if err != nil {
		t.Fatalf("Failed to load run: %v", err)
	}
	if entry.HouseID != "house-001" || entry.Profile != "modern_pex_small" || entry.Seed != 42 {
		t.Errorf("Entry identity mismatch: %+v", entry)
	}
	if !entry.StartTime.Equal(result.StartTime) {
		t.Errorf("Expected start time %v, got %v", result.StartTime, entry.StartTime)
	}
	if entry.Rows != 10 || entry.LeakRows != 4 || entry.FailedRows != 0 {
		t.Errorf("Count mismatch: %+v", entry)
	}
	if math.Abs(entry.LeakShare-0.4) > 1e-12 {
		t.Errorf("Expected leak share 0.4, got %v", entry.LeakShare)
	}
	if !entry.LightMode || entry.TransientSolve {
		t.Errorf("Flag mismatch: %+v", entry)
	}
}

func TestCatalogRecordReplacesRun(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	if err := cat.Write(ctx, testResult("run-a", "house-001", "modern_pex_small", 0)); err != nil {
		t.Fatalf("Failed to record run: %v", err)
	}
	if err := cat.Write(ctx, testResult("run-a", "house-001", "modern_pex_small", 7)); err != nil {
		t.Fatalf("Failed to re-record run: %v", err)
	}

	entries, err := cat.Runs(ctx, Filter{})
	if err != nil {
		t.Fatalf("Failed to list runs: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry after replace, got %d", len(entries))
	}
	if entries[0].LeakRows != 7 {
		t.Errorf("Expected the replacement entry, got %+v", entries[0])
	}
}

func TestCatalogFilters(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	runs := []*model.Result{
		testResult("run-a", "house-001", "modern_pex_small", 4),
		testResult("run-b", "house-002", "legacy_copper_medium", 0),
		testResult("run-c", "house-003", "modern_pex_small", 0),
	}
	for _, r := range runs {
		if err := cat.Write(ctx, r); err != nil {
			t.Fatalf("Failed to record %s: %v", r.RunID, err)
		}
	}

	cases := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 3},
		{"by profile", Filter{Profile: "modern_pex_small"}, 2},
		{"by house", Filter{HouseID: "house-002"}, 1},
		{"leak only", Filter{LeakOnly: true}, 1},
		{"limit", Filter{Limit: 2}, 2},
		{"no match", Filter{Profile: "mansion"}, 0},
	}
	for _, tc := range cases {
		entries, err := cat.Runs(ctx, tc.filter)
		if err != nil {
			t.Fatalf("%s: failed to list runs: %v", tc.name, err)
		}
		if len(entries) != tc.want {
			t.Errorf("%s: expected %d entries, got %d", tc.name, tc.want, len(entries))
		}
	}

	leaky, err := cat.Runs(ctx, Filter{LeakOnly: true})
	if err != nil {
		t.Fatalf("Failed to list leak runs: %v", err)
	}
	if len(leaky) != 1 || leaky[0].RunID != "run-a" {
		t.Errorf("Expected only run-a with leaks, got %+v", leaky)
	}
}

func TestCatalogUnknownRun(t *testing.T) {
	cat := openTestCatalog(t)

	_, err := cat.Run(context.Background(), "run-zz")
	if !errors.Is(err, model.ErrRunNotFound) {
		t.Fatalf("Expected ErrRunNotFound, got %v", err)
	}
}
