// Package export persists finished simulation results. Each writer owns one
// sink; a single collector goroutine hands results over, so writers never see
// concurrent Write calls.
package export

import (
	"log"

	"HydroSpectra/internal/config"
	"HydroSpectra/internal/model"
)

// NewWriters builds every enabled writer from the config. Unknown or failing
// writer definitions are skipped with a warning so one offline sink does not
// block a generation batch.
func NewWriters(cfg *config.Config) []model.Writer {
	writers := make([]model.Writer, 0, len(cfg.Writers))
	for _, def := range cfg.Writers {
		if !def.Enabled {
			continue
		}

		var writer model.Writer
		var err error
		switch def.Type {
		case "csv":
			writer = NewCSVWriter(def.CSV.RootPath)
		case "gob":
			writer = NewGobWriter(def.Gob.RootPath)
		case "clickhouse":
			writer, err = NewClickHouseWriter(def.ClickHouse)
		case "kafka":
			writer, err = NewKafkaWriter(def.Kafka)
		default:
			log.Printf("Warning: unknown writer type '%s' in config, skipping.", def.Type)
			continue
		}
		if err != nil {
			log.Printf("Warning: failed to create writer type '%s': %v, skipping.", def.Type, err)
			continue
		}
		writers = append(writers, writer)
	}
	return writers
}

// CloseAll closes every writer, logging failures instead of returning them.
func CloseAll(writers []model.Writer) {
	for _, w := range writers {
		if err := w.Close(); err != nil {
			log.Printf("Error closing %s writer: %v", w.Name(), err)
		}
	}
}
