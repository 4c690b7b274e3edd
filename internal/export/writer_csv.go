package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"HydroSpectra/internal/model"
)

// CSVWriter writes each run as a CSV table plus a JSON summary under
// rootPath/<run-id>/. It implements the model.Writer interface.
type CSVWriter struct {
	rootPath string
}

// NewCSVWriter creates a CSV table writer rooted at the given directory.
func NewCSVWriter(rootPath string) model.Writer {
	if rootPath == "" {
		rootPath = "data/csv"
	}
	return &CSVWriter{rootPath: rootPath}
}

// Name returns the writer type name.
func (w *CSVWriter) Name() string { return "csv" }

// Write renders the run's output table with the stable column header and a
// summary.json beside it. Boolean columns are rendered as 0/1 and failed
// steps keep their NaN markers.
func (w *CSVWriter) Write(ctx context.Context, result *model.Result) error {
	runDir := filepath.Join(w.rootPath, result.RunID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	cols := result.Columns()
	data := make([][]float64, len(cols))
	for i, name := range cols {
		col, err := result.Column(name)
		if err != nil {
			return fmt.Errorf("failed to read column '%s': %w", name, err)
		}
		data[i] = col
	}

	tablePath := filepath.Join(runDir, result.HouseID+".csv")
	file, err := os.Create(tablePath)
	if err != nil {
		return fmt.Errorf("failed to create table file '%s': %w", tablePath, err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("failed to write table header: %w", err)
	}
	record := make([]string, len(cols))
	for r := range result.Rows {
		for c := range cols {
			record[c] = strconv.FormatFloat(data[c][r], 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write table row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}

	return writeSummary(runDir, result)
}

// Close is a no-op; every Write is self-contained.
func (w *CSVWriter) Close() error { return nil }
