package export

import (
	"context"
	"fmt"
	"log"

	"HydroSpectra/internal/config"
	"HydroSpectra/internal/model"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const createTableStatement = `
CREATE TABLE IF NOT EXISTS water_telemetry (
    RunID            String,
    HouseID          String,
    Profile          String,
    StartTime        DateTime,
    TimeS            Float64,
    Flow             Float64,
    Pressure         Float64,
    Velocity         Float64,
    Leak             UInt8,
    Converged        UInt8,
    VelocityMeasured Float64,
    TransitTimeUp    Float64,
    TransitTimeDown  Float64,
    DeltaT           Float64,
    SignalQuality    Float64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(StartTime)
ORDER BY (HouseID, RunID, TimeS);
`

// ClickHouseWriter implements the model.Writer interface for ClickHouse.
type ClickHouseWriter struct {
	conn driver.Conn
}

// NewClickHouseWriter creates a new ClickHouse writer and ensures the
// telemetry table exists.
func NewClickHouseWriter(cfg config.ClickHouseConfig) (model.Writer, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Exec(context.Background(), createTableStatement); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	log.Println("Successfully connected to ClickHouse and ensured table exists.")

	return &ClickHouseWriter{conn: conn}, nil
}

// Name returns the writer type name.
func (w *ClickHouseWriter) Name() string { return "clickhouse" }

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: false,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})

	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// Write inserts every row of the run into the water_telemetry table.
func (w *ClickHouseWriter) Write(ctx context.Context, result *model.Result) error {
	batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO water_telemetry")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, row := range result.Rows {
		err = batch.Append(
			result.RunID,
			result.HouseID,
			result.Profile,
			result.StartTime,
			row.TimeS,
			row.Flow,
			row.Pressure,
			row.Velocity,
			boolToUint8(row.Leak),
			boolToUint8(row.Converged),
			row.VelocityMeasured,
			row.TransitTimeUp,
			row.TransitTimeDown,
			row.DeltaT,
			row.SignalQuality,
		)
		if err != nil {
			return fmt.Errorf("failed to append row to batch: %w", err)
		}
	}

	if len(result.Rows) == 0 {
		return nil // Nothing to write
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Printf("Wrote %d rows to ClickHouse for run '%s'", len(result.Rows), result.RunID)
	return nil
}

// Close releases the underlying connection.
func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
