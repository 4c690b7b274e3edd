// Package query reads generated telemetry back out of ClickHouse for the
// REST API.
package query

import (
	"context"
	"fmt"
	"strings"

	"HydroSpectra/internal/config"
	"HydroSpectra/internal/model"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// RunStats summarizes one run's telemetry. Flow and pressure statistics are
// computed over converged rows only, since failed steps carry NaN.
type RunStats struct {
	RunID        string  `json:"run_id"`
	HouseID      string  `json:"house_id"`
	Profile      string  `json:"profile"`
	Rows         uint64  `json:"rows"`
	LeakRows     uint64  `json:"leak_rows"`
	FailedRows   uint64  `json:"failed_rows"`
	LeakShare    float64 `json:"leak_share"`
	MeanFlow     float64 `json:"mean_flow_gpm"`
	MaxFlow      float64 `json:"max_flow_gpm"`
	MeanPressure float64 `json:"mean_pressure_psi"`
	MinPressure  float64 `json:"min_pressure_psi"`
}

// Querier defines the interface for reading telemetry.
type Querier interface {
	// RunSummary aggregates one run's rows into summary statistics.
	RunSummary(ctx context.Context, runID string) (*RunStats, error)
	// Rows fetches a run's rows within [fromS, toS] in time order. A toS of
	// zero or less means no upper bound; a positive limit caps the result.
	Rows(ctx context.Context, runID string, fromS, toS float64, limit int) ([]model.Row, error)
}

// clickhouseQuerier implements the Querier interface for ClickHouse.
type clickhouseQuerier struct {
	conn clickhouse.Conn
}

// NewClickHouseQuerier creates a new querier for ClickHouse.
func NewClickHouseQuerier(cfg config.ClickHouseConfig) (Querier, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return &clickhouseQuerier{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (clickhouse.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
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

// RunSummary aggregates one run's rows into summary statistics.
func (q *clickhouseQuerier) RunSummary(ctx context.Context, runID string) (*RunStats, error) {
	const query = `
		SELECT
			any(HouseID) AS HouseID,
			any(Profile) AS Profile,
			COUNT(*) AS RowCount,
			SUM(Leak) AS LeakRows,
			COUNT(*) - SUM(Converged) AS FailedRows,
			avgIf(Flow, Converged = 1) AS MeanFlow,
			maxIf(Flow, Converged = 1) AS MaxFlow,
			avgIf(Pressure, Converged = 1) AS MeanPressure,
			minIf(Pressure, Converged = 1) AS MinPressure
		FROM water_telemetry
		WHERE RunID = ?
	`

	stats := RunStats{RunID: runID}
	row := q.conn.QueryRow(ctx, query, runID)
	err := row.Scan(&stats.HouseID, &stats.Profile, &stats.Rows, &stats.LeakRows, &stats.FailedRows,
		&stats.MeanFlow, &stats.MaxFlow, &stats.MeanPressure, &stats.MinPressure)
	if err != nil {
		return nil, fmt.Errorf("failed to scan run summary: %w", err)
	}
	if stats.Rows == 0 {
		return nil, fmt.Errorf("%w: '%s'", model.ErrRunNotFound, runID)
	}
	stats.LeakShare = float64(stats.LeakRows) / float64(stats.Rows)

	return &stats, nil
}

// Rows fetches a run's rows within the requested window.
func (q *clickhouseQuerier) Rows(ctx context.Context, runID string, fromS, toS float64, limit int) ([]model.Row, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT TimeS, Flow, Pressure, Velocity, Leak, Converged,
		       VelocityMeasured, TransitTimeUp, TransitTimeDown, DeltaT, SignalQuality
		FROM water_telemetry
	`)

	whereClauses := []string{"RunID = ?", "TimeS >= ?"}
	args := []interface{}{runID, fromS}

	if toS > 0 {
		whereClauses = append(whereClauses, "TimeS <= ?")
		args = append(args, toS)
	}

	queryBuilder.WriteString(" WHERE " + strings.Join(whereClauses, " AND "))
	queryBuilder.WriteString(" ORDER BY TimeS")
	if limit > 0 {
		queryBuilder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := q.conn.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var out []model.Row
	for rows.Next() {
		var r model.Row
		var leak, converged uint8
		err := rows.Scan(&r.TimeS, &r.Flow, &r.Pressure, &r.Velocity, &leak, &converged,
			&r.VelocityMeasured, &r.TransitTimeUp, &r.TransitTimeDown, &r.DeltaT, &r.SignalQuality)
		if err != nil {
			return nil, fmt.Errorf("failed to scan telemetry row: %w", err)
		}
		r.Leak = leak != 0
		r.Converged = converged != 0
		out = append(out, r)
	}

	return out, nil
}
