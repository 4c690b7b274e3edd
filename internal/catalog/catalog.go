// Package catalog maintains a queryable SQLite index of generated runs, so
// training pipelines can locate runs by profile or leak presence without
// scanning the archives.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"HydroSpectra/internal/model"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    run_id             TEXT PRIMARY KEY,
    house_id           TEXT NOT NULL,
    profile            TEXT NOT NULL,
    start_time         TEXT NOT NULL,
    duration_seconds   REAL NOT NULL,
    resolution_seconds REAL NOT NULL,
    seed               INTEGER NOT NULL,
    light_mode         INTEGER NOT NULL,
    transient_solve    INTEGER NOT NULL,
    row_count          INTEGER NOT NULL,
    leak_rows          INTEGER NOT NULL,
    failed_rows        INTEGER NOT NULL,
    leak_share         REAL NOT NULL,
    created_at         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_profile ON runs(profile);
CREATE INDEX IF NOT EXISTS idx_runs_house ON runs(house_id);
`

// Entry is one cataloged run.
type Entry struct {
	RunID             string    `json:"run_id"`
	HouseID           string    `json:"house_id"`
	Profile           string    `json:"profile"`
	StartTime         time.Time `json:"start_time"`
	DurationSeconds   float64   `json:"duration_seconds"`
	ResolutionSeconds float64   `json:"resolution_seconds"`
	Seed              int64     `json:"seed"`
	LightMode         bool      `json:"light_mode"`
	TransientSolve    bool      `json:"transient_solve"`
	Rows              int       `json:"rows"`
	LeakRows          int       `json:"leak_rows"`
	FailedRows        int       `json:"failed_rows"`
	LeakShare         float64   `json:"leak_share"`
	CreatedAt         time.Time `json:"created_at"`
}

// Filter narrows a catalog listing. Zero values match everything.
type Filter struct {
	Profile  string
	HouseID  string
	LeakOnly bool
	Limit    int
}

// Catalog is the SQLite-backed run index. It implements the model.Writer
// interface so the fleet records every finished run alongside the data sinks.
type Catalog struct {
	db *sql.DB
}

// Open creates or opens the catalog database at the given path.
func Open(path string) (*Catalog, error) {
	if path == "" {
		path = "data/catalog.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Name returns the writer type name.
func (c *Catalog) Name() string { return "catalog" }

// Write records the run's metadata and row counts. Re-recording a run id
// replaces the previous entry.
func (c *Catalog) Write(ctx context.Context, result *model.Result) error {
	leakRows := result.LeakRows()
	leakShare := 0.0
	if len(result.Rows) > 0 {
		leakShare = float64(leakRows) / float64(len(result.Rows))
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (
			run_id, house_id, profile, start_time,
			duration_seconds, resolution_seconds, seed,
			light_mode, transient_solve,
			row_count, leak_rows, failed_rows, leak_share,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, result.RunID, result.HouseID, result.Profile, result.StartTime.UTC().Format(time.RFC3339),
		result.DurationSeconds, result.ResolutionSeconds, result.Seed,
		boolToInt(result.LightMode), boolToInt(result.TransientSolve),
		len(result.Rows), leakRows, result.FailedRows(), leakShare,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record run '%s': %w", result.RunID, err)
	}
	return nil
}

// Run returns one cataloged run by id.
func (c *Catalog) Run(ctx context.Context, runID string) (*Entry, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT run_id, house_id, profile, start_time,
		       duration_seconds, resolution_seconds, seed,
		       light_mode, transient_solve,
		       row_count, leak_rows, failed_rows, leak_share,
		       created_at
		FROM runs WHERE run_id = ?
	`, runID)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: '%s'", model.ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run '%s': %w", runID, err)
	}
	return entry, nil
}

// Runs lists cataloged runs matching the filter, newest first.
func (c *Catalog) Runs(ctx context.Context, filter Filter) ([]Entry, error) {
	var clauses []string
	var args []interface{}
	if filter.Profile != "" {
		clauses = append(clauses, "profile = ?")
		args = append(args, filter.Profile)
	}
	if filter.HouseID != "" {
		clauses = append(clauses, "house_id = ?")
		args = append(args, filter.HouseID)
	}
	if filter.LeakOnly {
		clauses = append(clauses, "leak_rows > 0")
	}

	query := `
		SELECT run_id, house_id, profile, start_time,
		       duration_seconds, resolution_seconds, seed,
		       light_mode, transient_solve,
		       row_count, leak_rows, failed_rows, leak_share,
		       created_at
		FROM runs`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, run_id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return entries, nil
}

// Close closes the catalog database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (*Entry, error) {
	var entry Entry
	var startTime, createdAt string
	var lightMode, transientSolve int
	err := s.Scan(
		&entry.RunID, &entry.HouseID, &entry.Profile, &startTime,
		&entry.DurationSeconds, &entry.ResolutionSeconds, &entry.Seed,
		&lightMode, &transientSolve,
		&entry.Rows, &entry.LeakRows, &entry.FailedRows, &entry.LeakShare,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	entry.LightMode = lightMode != 0
	entry.TransientSolve = transientSolve != 0
	if entry.StartTime, err = time.Parse(time.RFC3339, startTime); err != nil {
		return nil, fmt.Errorf("failed to parse start_time '%s': %w", startTime, err)
	}
	if entry.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at '%s': %w", createdAt, err)
	}
	return &entry, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
