// Package sim orchestrates simulation runs: it assembles network, demand,
// events, solver, and sensor for a single house and steps them through the
// sampled window, and fans a fleet of such runs across a worker pool.
package sim

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"HydroSpectra/internal/config"
	"HydroSpectra/internal/demand"
	"HydroSpectra/internal/event"
	"HydroSpectra/internal/factory"
	"HydroSpectra/internal/model"
	"HydroSpectra/internal/network"
	"HydroSpectra/internal/profile"
	"HydroSpectra/internal/sensor"
	_ "HydroSpectra/internal/solver/impl/steady"    // Registers the steady solver
	_ "HydroSpectra/internal/solver/impl/transient" // Registers the transient solver
)

const defaultWaterTemperatureC = 15.0

// Derived seeds keep every stochastic component of a run on its own stream.
const (
	sensorSeedOffset   = 1
	leakSeedOffset     = 10
	blockageSeedOffset = 1000
)

// Params identify and scope one house run.
type Params struct {
	HouseID           string
	Profile           string
	StartTime         time.Time
	DurationSeconds   float64
	ResolutionSeconds float64
	Seed              int64
	LightMode         bool
	EnableTsnet       bool
}

// HouseSimulator steps a single house through its simulation window. All of
// its collaborators are scoped to the run and carry their own seeded random
// state, so simulators for different houses can run in parallel without
// synchronization.
type HouseSimulator struct {
	params    Params
	profile   *profile.Profile
	net       *model.Network
	meterPipe model.Pipe
	generator *demand.Generator
	scheduler *event.Scheduler
	solver    model.Solver
}

// NewHouseSimulator validates the run parameters and assembles the pipeline.
// Configuration problems (unknown profile, non-positive duration or
// resolution) surface here, before any simulation work begins. A zero start
// time means now; light mode forces the steady solver regardless of the
// transient flag.
func NewHouseSimulator(store *profile.Store, solverCfg *config.SolverConfig, p Params) (*HouseSimulator, error) {
	if p.HouseID == "" {
		return nil, fmt.Errorf("%w: house id is empty", model.ErrInvalidConfig)
	}
	if p.DurationSeconds <= 0 {
		return nil, fmt.Errorf("%w: duration %v seconds", model.ErrInvalidConfig, p.DurationSeconds)
	}
	if p.ResolutionSeconds <= 0 {
		return nil, fmt.Errorf("%w: resolution %v seconds", model.ErrInvalidConfig, p.ResolutionSeconds)
	}
	if p.StartTime.IsZero() {
		p.StartTime = time.Now()
	}
	if store == nil {
		store = profile.NewStore()
	}
	if solverCfg == nil {
		solverCfg = &config.SolverConfig{}
	}

	prof, err := store.Get(p.Profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create house simulator: %w", err)
	}
	net := network.NewBuilder(store).BuildFromProfile(prof)
	meterPipe, ok := net.Pipe(net.MeterPipe)
	if !ok {
		return nil, fmt.Errorf("%w: profile %q has no meter pipe %q", model.ErrInvalidConfig, prof.ID, net.MeterPipe)
	}

	solverName := "steady"
	if p.EnableTsnet && !p.LightMode {
		solverName = "transient"
	}
	solver, err := factory.Create(solverName, solverCfg)
	if err != nil {
		return nil, err
	}

	return &HouseSimulator{
		params:    p,
		profile:   prof,
		net:       net,
		meterPipe: meterPipe,
		generator: demand.NewGenerator(store),
		scheduler: event.NewScheduler(p.DurationSeconds / 3600.0),
		solver:    solver,
	}, nil
}

// Network exposes the assembled topology, mainly for callers that want to
// validate event locations up front.
func (h *HouseSimulator) Network() *model.Network { return h.net }

// AddLeak registers a leak for this run. The node must exist in the house
// topology and the start must fall inside the simulation window.
func (h *HouseSimulator) AddLeak(leak *event.LeakEvent) error {
	if !h.net.HasNode(leak.Location()) {
		return fmt.Errorf("%w: leak node %q not in profile %q", model.ErrInvalidEvent, leak.Location(), h.profile.ID)
	}
	return h.scheduler.AddLeak(leak)
}

// AddBlockage registers a blockage for this run. The pipe must exist in the
// house topology.
func (h *HouseSimulator) AddBlockage(blk *event.BlockageEvent) error {
	if _, ok := h.net.Pipe(blk.Location()); !ok {
		return fmt.Errorf("%w: blocked pipe %q not in profile %q", model.ErrInvalidEvent, blk.Location(), h.profile.ID)
	}
	return h.scheduler.AddBlockage(blk)
}

// Run executes the whole pipeline and returns the labeled output table. Rows
// cover t=0 through t=duration inclusive at the sampling resolution. A step
// the solver cannot resolve is recorded as an unconverged NaN row rather than
// failing the run; the run errors only if every step fails. Run is intended
// to be called once per simulator.
func (h *HouseSimulator) Run(ctx context.Context) (*model.Result, error) {
	p := h.params
	// Guard the ratio: 1.2/0.1 can land just under the integer in floats.
	steps := int(math.Floor(p.DurationSeconds/p.ResolutionSeconds+1e-9)) + 1
	durationHours := p.DurationSeconds / 3600.0

	series, err := h.generator.Generate(p.Profile, durationHours, p.ResolutionSeconds, int(p.StartTime.Month()), p.Seed)
	if err != nil {
		return nil, err
	}

	log.Printf("[house %s] starting run: profile=%s solver=%s rows=%d events=%d",
		p.HouseID, p.Profile, h.solver.Name(), steps, h.scheduler.Len())

	rows := make([]model.Row, steps)
	failed := 0
	for i := 0; i < steps; i++ {
		timeS := float64(i) * p.ResolutionSeconds
		tHours := timeS / 3600.0

		in := &model.SolveInput{
			Network:          h.net,
			TimeS:            timeS,
			SupplyPressurePa: h.profile.SupplyPressurePa,
			Demands:          h.demandsAt(series, i),
			Leaks:            h.leaksAt(tHours),
			Blockages:        h.blockagesAt(tHours),
		}

		row := model.Row{TimeS: timeS, Leak: h.scheduler.LeakActiveAt(tHours)}
		out, err := h.solver.Solve(ctx, in)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, fmt.Errorf("run aborted at t=%vs: %w", timeS, ctx.Err())
		case err != nil:
			log.Printf("[house %s] step t=%vs failed: %v", p.HouseID, timeS, err)
			markFailed(&row)
			failed++
		case !out.Converged:
			log.Printf("[house %s] step t=%vs did not converge", p.HouseID, timeS)
			markFailed(&row)
			failed++
		default:
			row.Flow = out.Flows[h.meterPipe.Name] * model.CubicMetersPerSecToGPM
			row.Pressure = out.Pressures[h.meterPipe.To] * model.PascalToPSI
			row.Velocity = out.Velocities[h.meterPipe.Name]
			row.Converged = true
		}
		rows[i] = row
	}

	if failed == steps {
		return nil, fmt.Errorf("%w: %d of %d steps", model.ErrAllStepsFailed, failed, steps)
	}

	if err := h.applySensor(rows); err != nil {
		return nil, err
	}

	result := &model.Result{
		RunID:             uuid.NewString(),
		HouseID:           p.HouseID,
		Profile:           p.Profile,
		StartTime:         p.StartTime,
		DurationSeconds:   p.DurationSeconds,
		ResolutionSeconds: p.ResolutionSeconds,
		Seed:              p.Seed,
		LightMode:         p.LightMode,
		TransientSolve:    h.solver.Name() == "transient",
		Rows:              rows,
	}
	log.Printf("[house %s] run %s complete: %d rows, %d leak rows, %d failed steps",
		p.HouseID, result.RunID, len(rows), result.LeakRows(), failed)
	return result, nil
}

// demandsAt spreads the sampled household draw across the demand nodes by
// their declared shares. The demand series excludes the endpoint sample, so
// the final row reuses the last interval's draw.
func (h *HouseSimulator) demandsAt(series model.TimeSeries, step int) map[string]float64 {
	if series.Len() == 0 {
		return nil
	}
	idx := step
	if idx >= series.Len() {
		idx = series.Len() - 1
	}
	totalM3s := series.Values[idx] * model.LitersPerMinToCubicMetersPerSec

	demands := make(map[string]float64)
	for _, node := range h.net.Nodes {
		if node.DemandShare > 0 {
			demands[node.Name] = totalM3s * node.DemandShare
		}
	}
	return demands
}

// leaksAt translates the leaks active at t into solver perturbations frozen
// at their current elapsed time.
func (h *HouseSimulator) leaksAt(tHours float64) []model.LeakPerturbation {
	var leaks []model.LeakPerturbation
	for _, ae := range h.scheduler.ActiveAt(tHours) {
		if ae.Category != model.CategoryLeak {
			continue
		}
		leak, ok := ae.Event.(*event.LeakEvent)
		if !ok {
			continue
		}
		elapsed := tHours - leak.StartHours()
		leaks = append(leaks, model.LeakPerturbation{
			Node: leak.Location(),
			FlowAt: func(pa float64) float64 {
				return leak.FlowAt(elapsed, pa)
			},
		})
	}
	return leaks
}

// blockagesAt translates the blockages active at t into head-loss multipliers.
func (h *HouseSimulator) blockagesAt(tHours float64) []model.BlockagePerturbation {
	var blockages []model.BlockagePerturbation
	for _, ae := range h.scheduler.ActiveAt(tHours) {
		if ae.Category != model.CategoryBlockage {
			continue
		}
		blk, ok := ae.Event.(*event.BlockageEvent)
		if !ok {
			continue
		}
		blockages = append(blockages, model.BlockagePerturbation{
			Pipe:       blk.Location(),
			Multiplier: blk.HeadLossMultiplierAt(tHours - blk.StartHours()),
		})
	}
	return blockages
}

// applySensor runs the acoustic meter over the true velocity series and
// copies its channels into the rows.
func (h *HouseSimulator) applySensor(rows []model.Row) error {
	velocities := make([]float64, len(rows))
	for i, row := range rows {
		velocities[i] = row.Velocity
	}
	temp := h.profile.Attributes.Float("water_temperature_c", defaultWaterTemperatureC)
	meter := sensor.NewUltrasonicMeter(h.params.Seed + sensorSeedOffset)
	channels, err := meter.Simulate(velocities, h.meterPipe.DiameterM, temp)
	if err != nil {
		return fmt.Errorf("failed to run the meter model: %w", err)
	}
	for i := range rows {
		rows[i].VelocityMeasured = channels[sensor.ChannelVelocityMeasured][i]
		rows[i].TransitTimeUp = channels[sensor.ChannelTransitTimeUp][i]
		rows[i].TransitTimeDown = channels[sensor.ChannelTransitTimeDown][i]
		rows[i].DeltaT = channels[sensor.ChannelDeltaT][i]
		rows[i].SignalQuality = channels[sensor.ChannelSignalQuality][i]
	}
	return nil
}

// markFailed blanks the hydraulic fields of a step the solver could not
// resolve. Leak activity is schedule-driven and survives the failure.
func markFailed(row *model.Row) {
	row.Flow = math.NaN()
	row.Pressure = math.NaN()
	row.Velocity = math.NaN()
	row.Converged = false
}
