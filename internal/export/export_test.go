package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"HydroSpectra/internal/config"
	"HydroSpectra/internal/model"
)

// sampleResult builds a small run with one leak row and one failed step.
func sampleResult() *model.Result {
	start, _ := time.Parse(time.RFC3339, "2025-07-14T00:00:00Z")
	nan := math.NaN()
	return &model.Result{
		RunID:             "run-test-0001",
		HouseID:           "house-001",
		Profile:           "modern_pex_small",
		StartTime:         start,
		DurationSeconds:   20,
		ResolutionSeconds: 10,
		Seed:              42,
		LightMode:         true,
		Rows: []model.Row{
			{TimeS: 0, Flow: 3.2, Pressure: 44.9, Velocity: 0.71, Converged: true,
				VelocityMeasured: 0.7, TransitTimeUp: 1.82e-5, TransitTimeDown: 1.81e-5, DeltaT: 1.0e-8, SignalQuality: 96.5},
			{TimeS: 10, Flow: 6.8, Pressure: 43.1, Velocity: 1.52, Leak: true, Converged: true,
				VelocityMeasured: 1.51, TransitTimeUp: 1.83e-5, TransitTimeDown: 1.8e-5, DeltaT: 2.1e-8, SignalQuality: 94.2},
			{TimeS: 20, Flow: nan, Pressure: nan, Velocity: nan, Leak: true, Converged: false,
				VelocityMeasured: nan, TransitTimeUp: nan, TransitTimeDown: nan, DeltaT: nan, SignalQuality: 0},
		},
	}
}

func TestCSVWriterWritesTableAndSummary(t *testing.T) {
	root := t.TempDir()
	result := sampleResult()

	// 1. Write the run.
	w := NewCSVWriter(root)
	if err := w.Write(context.Background(), result); err != nil {
		t.Fatalf("Failed to write CSV: %v", err)
	}

	// 2. Read the table back and check header plus row count.
	tablePath := filepath.Join(root, result.RunID, result.HouseID+".csv")
	file, err := os.Open(tablePath)
	if err != nil {
		t.Fatalf("Failed to open table: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse table: %v", err)
	}
	if len(records) != len(result.Rows)+1 {
		t.Fatalf("Expected %d records, got %d", len(result.Rows)+1, len(records))
	}
	cols := result.Columns()
	for i, name := range cols {
		if records[0][i] != name {
			t.Errorf("Header column %d: expected %q, got %q", i, name, records[0][i])
		}
	}

	// 3. Booleans render as 0/1, failed steps keep their NaN markers.
	leakCol, convergedCol, flowCol := 4, 5, 1
	if records[1][leakCol] != "0" || records[2][leakCol] != "1" {
		t.Errorf("Unexpected leak column values: %q, %q", records[1][leakCol], records[2][leakCol])
	}
	if records[3][convergedCol] != "0" {
		t.Errorf("Failed step should render converged as 0, got %q", records[3][convergedCol])
	}
	if records[3][flowCol] != "NaN" {
		t.Errorf("Failed step should render flow as NaN, got %q", records[3][flowCol])
	}

	// 4. The summary sidecar carries the run metadata and row counts.
	summaryFile, err := os.Open(filepath.Join(root, result.RunID, "summary.json"))
	if err != nil {
		t.Fatalf("Failed to open summary: %v", err)
	}
	defer summaryFile.Close()

	var summary RunSummary
	if err := json.NewDecoder(summaryFile).Decode(&summary); err != nil {
		t.Fatalf("Failed to decode summary: %v", err)
	}
	if summary.RunID != result.RunID || summary.HouseID != result.HouseID || summary.Profile != result.Profile {
		t.Errorf("Summary identity mismatch: %+v", summary)
	}
	if summary.StartTime != "2025-07-14T00:00:00Z" {
		t.Errorf("Expected RFC3339 start time, got %q", summary.StartTime)
	}
	if summary.Rows != 3 || summary.LeakRows != 2 || summary.FailedRows != 1 {
		t.Errorf("Summary counts mismatch: rows=%d leak=%d failed=%d", summary.Rows, summary.LeakRows, summary.FailedRows)
	}
}

func TestGobWriterRoundTrip(t *testing.T) {
	root := t.TempDir()
	result := sampleResult()

	// 1. Archive the run.
	w := NewGobWriter(root)
	if err := w.Write(context.Background(), result); err != nil {
		t.Fatalf("Failed to write gob: %v", err)
	}

	// 2. Load it back and compare.
	loaded, err := LoadResult(filepath.Join(root, result.RunID, "result.gob"))
	if err != nil {
		t.Fatalf("Failed to load archive: %v", err)
	}
	if loaded.RunID != result.RunID || loaded.Seed != result.Seed || !loaded.StartTime.Equal(result.StartTime) {
		t.Errorf("Metadata mismatch after round trip: %+v", loaded)
	}
	if len(loaded.Rows) != len(result.Rows) {
		t.Fatalf("Expected %d rows, got %d", len(result.Rows), len(loaded.Rows))
	}
	// NaN never compares equal, so check the failed row by class.
	for i, row := range loaded.Rows[:2] {
		if row != result.Rows[i] {
			t.Errorf("Row %d mismatch: %+v vs %+v", i, row, result.Rows[i])
		}
	}
	failed := loaded.Rows[2]
	if !math.IsNaN(failed.Flow) || !math.IsNaN(failed.Pressure) || failed.Converged {
		t.Errorf("Failed step not preserved: %+v", failed)
	}

	// 3. The archive directory carries the same summary sidecar as the CSV
	// export.
	summaryFile, err := os.Open(filepath.Join(root, result.RunID, "summary.json"))
	if err != nil {
		t.Fatalf("Failed to open summary: %v", err)
	}
	defer summaryFile.Close()
	var summary RunSummary
	if err := json.NewDecoder(summaryFile).Decode(&summary); err != nil {
		t.Fatalf("Failed to decode summary: %v", err)
	}
	if summary.RunID != result.RunID || summary.Rows != 3 {
		t.Errorf("Summary mismatch: %+v", summary)
	}
}

func TestLoadResultMissingFile(t *testing.T) {
	if _, err := LoadResult(filepath.Join(t.TempDir(), "nope.gob")); err == nil {
		t.Fatal("Expected an error for a missing archive")
	}
}

func TestNewWritersSelectsEnabled(t *testing.T) {
	cfg := &config.Config{
		Writers: []config.WriterDef{
			{Type: "csv", Enabled: true, CSV: config.CSVWriterConfig{RootPath: t.TempDir()}},
			{Type: "gob", Enabled: false},
			{Type: "parquet", Enabled: true},
			{Type: "kafka", Enabled: true}, // no brokers, creation fails
		},
	}

	writers := NewWriters(cfg)
	if len(writers) != 1 {
		t.Fatalf("Expected 1 writer, got %d", len(writers))
	}
	if writers[0].Name() != "csv" {
		t.Errorf("Expected csv writer, got %q", writers[0].Name())
	}
	CloseAll(writers)
}
