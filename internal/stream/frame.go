// Package stream publishes telemetry rows to NATS as they are produced, so
// downstream consumers can watch runs live instead of polling the sinks.
package stream

import (
	"math"
	"time"

	"HydroSpectra/internal/model"
)

// RowFrame is the JSON payload published per telemetry row. Measurement
// fields are pointers so that failed steps, which carry NaN, serialize as
// null instead of breaking the encoder.
type RowFrame struct {
	RunID            string    `json:"run_id"`
	HouseID          string    `json:"house_id"`
	Profile          string    `json:"profile"`
	Timestamp        time.Time `json:"timestamp"`
	TimeS            float64   `json:"time_s"`
	Flow             *float64  `json:"flow"`
	Pressure         *float64  `json:"pressure"`
	Velocity         *float64  `json:"velocity"`
	Leak             bool      `json:"leak"`
	Converged        bool      `json:"converged"`
	VelocityMeasured *float64  `json:"velocity_measured"`
	TransitTimeUp    *float64  `json:"transit_time_up"`
	TransitTimeDown  *float64  `json:"transit_time_down"`
	DeltaT           *float64  `json:"delta_t"`
	SignalQuality    float64   `json:"signal_quality"`
}

// NewRowFrame builds the frame for one row of a finished run.
func NewRowFrame(result *model.Result, row model.Row) RowFrame {
	return RowFrame{
		RunID:            result.RunID,
		HouseID:          result.HouseID,
		Profile:          result.Profile,
		Timestamp:        result.StartTime.Add(time.Duration(row.TimeS * float64(time.Second))),
		TimeS:            row.TimeS,
		Flow:             nullableFloat(row.Flow),
		Pressure:         nullableFloat(row.Pressure),
		Velocity:         nullableFloat(row.Velocity),
		Leak:             row.Leak,
		Converged:        row.Converged,
		VelocityMeasured: nullableFloat(row.VelocityMeasured),
		TransitTimeUp:    nullableFloat(row.TransitTimeUp),
		TransitTimeDown:  nullableFloat(row.TransitTimeDown),
		DeltaT:           nullableFloat(row.DeltaT),
		SignalQuality:    row.SignalQuality,
	}
}

// ToRow converts the frame back to a native row, mapping null measurements
// to NaN.
func (f *RowFrame) ToRow() model.Row {
	return model.Row{
		TimeS:            f.TimeS,
		Flow:             floatOrNaN(f.Flow),
		Pressure:         floatOrNaN(f.Pressure),
		Velocity:         floatOrNaN(f.Velocity),
		Leak:             f.Leak,
		Converged:        f.Converged,
		VelocityMeasured: floatOrNaN(f.VelocityMeasured),
		TransitTimeUp:    floatOrNaN(f.TransitTimeUp),
		TransitTimeDown:  floatOrNaN(f.TransitTimeDown),
		DeltaT:           floatOrNaN(f.DeltaT),
		SignalQuality:    f.SignalQuality,
	}
}

func nullableFloat(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func floatOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
