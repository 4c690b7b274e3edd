package stream

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"
	"time"

	"HydroSpectra/internal/model"
)

func frameResult() *model.Result {
	start, _ := time.Parse(time.RFC3339, "2025-07-14T06:00:00Z")
	return &model.Result{
		RunID:     "run-frame-0001",
		HouseID:   "house-001",
		Profile:   "modern_pex_small",
		StartTime: start,
	}
}

func TestRowFrameRoundTrip(t *testing.T) {
	result := frameResult()
	row := model.Row{
		TimeS: 30, Flow: 4.1, Pressure: 44.2, Velocity: 0.9, Leak: true, Converged: true,
		VelocityMeasured: 0.89, TransitTimeUp: 1.8e-5, TransitTimeDown: 1.79e-5, DeltaT: 9.0e-9,
		SignalQuality: 95.0,
	}

	// 1. Encode and check the frame carries the run identity and timestamp.
	frame := NewRowFrame(result, row)
	if frame.HouseID != "house-001" || frame.RunID != "run-frame-0001" {
		t.Errorf("Frame identity mismatch: %+v", frame)
	}
	want := result.StartTime.Add(30 * time.Second)
	if !frame.Timestamp.Equal(want) {
		t.Errorf("Expected timestamp %v, got %v", want, frame.Timestamp)
	}

	data, err := json.Marshal(frame)
	if err != nil {
		t.Fatalf("Failed to marshal frame: %v", err)
	}

	// 2. Decode and convert back to a native row.
	var decoded RowFrame
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal frame: %v", err)
	}
	if got := decoded.ToRow(); got != row {
		t.Errorf("Row changed across the wire: %+v vs %+v", got, row)
	}
}

func TestRowFrameFailedStepSerializesAsNull(t *testing.T) {
	nan := math.NaN()
	row := model.Row{TimeS: 60, Flow: nan, Pressure: nan, Velocity: nan, Leak: true,
		VelocityMeasured: nan, TransitTimeUp: nan, TransitTimeDown: nan, DeltaT: nan}

	// 1. NaN measurements must not break the encoder.
	frame := NewRowFrame(frameResult(), row)
	data, err := json.Marshal(frame)
	if err != nil {
		t.Fatalf("Failed to marshal failed-step frame: %v", err)
	}
	if !bytes.Contains(data, []byte(`"flow":null`)) {
		t.Errorf("Expected flow to serialize as null: %s", data)
	}

	// 2. Null measurements come back as NaN.
	var decoded RowFrame
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal frame: %v", err)
	}
	got := decoded.ToRow()
	if !math.IsNaN(got.Flow) || !math.IsNaN(got.DeltaT) {
		t.Errorf("Expected NaN measurements after decode: %+v", got)
	}
	if !got.Leak || got.Converged {
		t.Errorf("Flags changed across the wire: %+v", got)
	}
	if got.SignalQuality != 0 {
		t.Errorf("Expected zero signal quality on a failed step, got %v", got.SignalQuality)
	}
}
