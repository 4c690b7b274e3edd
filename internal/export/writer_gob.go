package export

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"HydroSpectra/internal/model"
)

// GobWriter archives each run as a gob file plus a JSON summary under
// rootPath/<run-id>/, preserving the full native result for later
// reprocessing. It implements the model.Writer interface.
type GobWriter struct {
	rootPath string
}

// NewGobWriter creates an archive writer rooted at the given directory.
func NewGobWriter(rootPath string) model.Writer {
	if rootPath == "" {
		rootPath = "data/gob"
	}
	return &GobWriter{rootPath: rootPath}
}

// Name returns the writer type name.
func (w *GobWriter) Name() string { return "gob" }

// Write serializes the run to rootPath/<run-id>/result.gob and drops a
// summary.json beside it.
func (w *GobWriter) Write(ctx context.Context, result *model.Result) error {
	runDir := filepath.Join(w.rootPath, result.RunID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	path := filepath.Join(runDir, "result.gob")
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive file '%s': %w", path, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(result); err != nil {
		return fmt.Errorf("failed to encode result to gob: %w", err)
	}
	return writeSummary(runDir, result)
}

// Close is a no-op; every Write is self-contained.
func (w *GobWriter) Close() error { return nil }

// LoadResult reads back a run archived by the gob writer.
func LoadResult(path string) (*model.Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive file '%s': %w", path, err)
	}
	defer file.Close()

	var result model.Result
	if err := gob.NewDecoder(file).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode archive '%s': %w", path, err)
	}
	return &result, nil
}
