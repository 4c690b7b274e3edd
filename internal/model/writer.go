package model

import "context"

// Writer defines a generic interface for persisting a finished simulation
// result to a store. Implementations receive one complete Result per run and
// are expected to batch their own I/O.
type Writer interface {
	// Name identifies the writer kind in logs (e.g. "csv", "clickhouse").
	Name() string

	// Write persists a single run's result.
	Write(ctx context.Context, result *Result) error

	// Close releases any connections or buffers held by the writer.
	Close() error
}
