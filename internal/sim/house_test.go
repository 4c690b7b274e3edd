package sim

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"HydroSpectra/internal/event"
	"HydroSpectra/internal/model"
)

func lightParams(seed int64) Params {
	return Params{
		HouseID:           "house-001",
		Profile:           "modern_pex_small",
		StartTime:         time.Date(2025, time.July, 14, 0, 0, 0, 0, time.UTC),
		DurationSeconds:   120,
		ResolutionSeconds: 10,
		Seed:              seed,
		LightMode:         true,
	}
}

func TestRunRowCountAndColumns(t *testing.T) {
	house, err := NewHouseSimulator(nil, nil, lightParams(1))
	if err != nil {
		t.Fatalf("NewHouseSimulator failed: %v", err)
	}
	result, err := house.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// 1. 120 s at 10 s resolution samples both endpoints: 13 rows.
	if len(result.Rows) != 13 {
		t.Fatalf("Expected 13 rows, got %d", len(result.Rows))
	}
	for i, row := range result.Rows {
		if want := float64(i) * 10; row.TimeS != want {
			t.Errorf("Row %d: time %v, want %v", i, row.TimeS, want)
		}
		if !row.Converged {
			t.Errorf("Row %d: light-mode step did not converge", i)
		}
	}

	// 2. The stable column set leads with the training channels.
	cols := result.Columns()
	for i, want := range []string{"time", "flow", "pressure", "velocity", "leak"} {
		if cols[i] != want {
			t.Errorf("Column %d: got %s, want %s", i, cols[i], want)
		}
	}

	// 3. Hydraulic values stay in the plausible residential range.
	for i, row := range result.Rows {
		if row.Flow < 0 || math.IsNaN(row.Flow) {
			t.Errorf("Row %d: flow %v gpm", i, row.Flow)
		}
		if row.Pressure < 20 || row.Pressure > 60 {
			t.Errorf("Row %d: pressure %v psi outside the service range", i, row.Pressure)
		}
		if row.SignalQuality <= 0 {
			t.Errorf("Row %d: meter lost signal on a converged step", i)
		}
	}

	if result.RunID == "" || result.HouseID != "house-001" || !result.LightMode || result.TransientSolve {
		t.Errorf("Result metadata wrong: %+v", result)
	}
}

func TestRunDeterministicPerSeed(t *testing.T) {
	run := func(seed int64) *model.Result {
		house, err := NewHouseSimulator(nil, nil, lightParams(seed))
		if err != nil {
			t.Fatalf("NewHouseSimulator failed: %v", err)
		}
		result, err := house.Run(context.Background())
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return result
	}

	first, second := run(7), run(7)
	for i := range first.Rows {
		a, b := first.Rows[i], second.Rows[i]
		if a.Flow != b.Flow || a.Pressure != b.Pressure || a.VelocityMeasured != b.VelocityMeasured {
			t.Fatalf("Row %d not reproducible: %+v vs %+v", i, a, b)
		}
	}

	other := run(8)
	same := true
	for i := range first.Rows {
		if first.Rows[i].Flow != other.Rows[i].Flow {
			same = false
			break
		}
	}
	if same {
		t.Error("Different seeds produced an identical flow column")
	}
}

func TestRunLeakRowsAndSignature(t *testing.T) {
	params := lightParams(3)
	params.DurationSeconds = 7200
	params.ResolutionSeconds = 60
	house, err := NewHouseSimulator(nil, nil, params)
	if err != nil {
		t.Fatalf("NewHouseSimulator failed: %v", err)
	}

	leak, err := event.NewLeak(event.LeakBurst, "Bathroom", 0.5, 1.0, 42)
	if err != nil {
		t.Fatalf("NewLeak failed: %v", err)
	}
	if err := house.AddLeak(leak); err != nil {
		t.Fatalf("AddLeak failed: %v", err)
	}

	result, err := house.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Half-open window [0.5h, 1.5h) at 60 s resolution: rows 1800..5340.
	if got := result.LeakRows(); got != 60 {
		t.Errorf("Expected 60 leak rows, got %d", got)
	}

	var leakMean, quietMean float64
	var leakN, quietN int
	for _, row := range result.Rows {
		if row.Leak {
			leakMean += row.Flow
			leakN++
		} else {
			quietMean += row.Flow
			quietN++
		}
	}
	leakMean /= float64(leakN)
	quietMean /= float64(quietN)
	if leakMean < quietMean+5 {
		t.Errorf("A burst leak must dominate the flow signature: leak mean %v gpm vs quiet mean %v gpm",
			leakMean, quietMean)
	}
}

func TestRunTransientSelection(t *testing.T) {
	params := lightParams(5)
	params.LightMode = false
	params.EnableTsnet = true
	house, err := NewHouseSimulator(nil, nil, params)
	if err != nil {
		t.Fatalf("NewHouseSimulator failed: %v", err)
	}
	result, err := house.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !result.TransientSolve {
		t.Error("EnableTsnet without light mode must use the transient solver")
	}

	// Light mode wins over the transient flag.
	params.LightMode = true
	house, err = NewHouseSimulator(nil, nil, params)
	if err != nil {
		t.Fatalf("NewHouseSimulator failed: %v", err)
	}
	result, err = house.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.TransientSolve {
		t.Error("Light mode must force the steady solver")
	}
}

func TestNewHouseSimulatorValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
		want   error
	}{
		{"empty house id", func(p *Params) { p.HouseID = "" }, model.ErrInvalidConfig},
		{"zero duration", func(p *Params) { p.DurationSeconds = 0 }, model.ErrInvalidConfig},
		{"negative resolution", func(p *Params) { p.ResolutionSeconds = -10 }, model.ErrInvalidConfig},
		{"unknown profile", func(p *Params) { p.Profile = "mansion" }, model.ErrUnknownProfile},
	}
	for _, tc := range cases {
		params := lightParams(1)
		tc.mutate(&params)
		if _, err := NewHouseSimulator(nil, nil, params); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestEventRegistrationValidation(t *testing.T) {
	house, err := NewHouseSimulator(nil, nil, lightParams(1))
	if err != nil {
		t.Fatalf("NewHouseSimulator failed: %v", err)
	}

	leak, _ := event.NewLeak(event.LeakPinhole, "Garage", 0, event.NoEnd, 1)
	if err := house.AddLeak(leak); !errors.Is(err, model.ErrInvalidEvent) {
		t.Errorf("Expected ErrInvalidEvent for an unknown node, got %v", err)
	}

	blk, _ := event.NewBlockage(event.BlockageDebris, "Garage->Attic", 0, event.NoEnd, 1)
	if err := house.AddBlockage(blk); !errors.Is(err, model.ErrInvalidEvent) {
		t.Errorf("Expected ErrInvalidEvent for an unknown pipe, got %v", err)
	}

	// The 120 s window is ~0.033 h; an event starting at hour 1 is outside it.
	late, _ := event.NewLeak(event.LeakPinhole, "Kitchen", 1.0, 0.5, 1)
	if err := house.AddLeak(late); !errors.Is(err, model.ErrInvalidEvent) {
		t.Errorf("Expected ErrInvalidEvent for a start beyond the horizon, got %v", err)
	}
}

func TestRunHonorsCancel(t *testing.T) {
	house, err := NewHouseSimulator(nil, nil, lightParams(1))
	if err != nil {
		t.Fatalf("NewHouseSimulator failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := house.Run(ctx); err == nil {
		t.Fatal("Expected Run to abort on a cancelled context")
	}
}
