package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"HydroSpectra/internal/model"
)

// RunSummary is the sidecar metadata written next to each exported run.
type RunSummary struct {
	RunID             string  `json:"run_id"`
	HouseID           string  `json:"house_id"`
	Profile           string  `json:"profile"`
	StartTime         string  `json:"start_time"`
	DurationSeconds   float64 `json:"duration_seconds"`
	ResolutionSeconds float64 `json:"resolution_seconds"`
	Seed              int64   `json:"seed"`
	LightMode         bool    `json:"light_mode"`
	TransientSolve    bool    `json:"transient_solve"`
	Rows              int     `json:"rows"`
	LeakRows          int     `json:"leak_rows"`
	FailedRows        int     `json:"failed_rows"`
}

// writeSummary writes the run's summary.json into its output directory.
func writeSummary(runDir string, result *model.Result) error {
	summary := RunSummary{
		RunID:             result.RunID,
		HouseID:           result.HouseID,
		Profile:           result.Profile,
		StartTime:         result.StartTime.UTC().Format(time.RFC3339),
		DurationSeconds:   result.DurationSeconds,
		ResolutionSeconds: result.ResolutionSeconds,
		Seed:              result.Seed,
		LightMode:         result.LightMode,
		TransientSolve:    result.TransientSolve,
		Rows:              len(result.Rows),
		LeakRows:          result.LeakRows(),
		FailedRows:        result.FailedRows(),
	}

	summaryPath := filepath.Join(runDir, "summary.json")
	file, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode summary to json: %w", err)
	}
	return nil
}
