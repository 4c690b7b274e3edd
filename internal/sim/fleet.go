package sim

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"HydroSpectra/internal/config"
	"HydroSpectra/internal/event"
	"HydroSpectra/internal/model"
	"HydroSpectra/internal/profile"
)

const defaultNumWorkers = 4

// runOutcome carries one finished house run from a worker to the collector.
type runOutcome struct {
	houseID string
	result  *model.Result
	err     error
}

// Fleet runs the configured houses across a fixed worker pool. Workers only
// simulate; a single collector goroutine owns every write, so the writers
// never see concurrent calls.
type Fleet struct {
	cfg     *config.Config
	store   *profile.Store
	writers []model.Writer

	workerWg    sync.WaitGroup
	collectorWg sync.WaitGroup

	// Owned by the collector while it runs; read after Wait.
	written int
	failed  int
}

// NewFleet creates a fleet over the given profile store and result writers.
// The caller keeps ownership of the writers and closes them after Run.
func NewFleet(cfg *config.Config, store *profile.Store, writers []model.Writer) *Fleet {
	if store == nil {
		store = profile.NewStore()
	}
	return &Fleet{cfg: cfg, store: store, writers: writers}
}

// Run simulates every configured house and writes each result as it lands.
// Setup problems with any house definition fail the whole fleet before any
// simulation starts; individual run failures are logged and counted, and Run
// errors only when no house produced a result.
func (f *Fleet) Run(ctx context.Context) error {
	houses := make([]*HouseSimulator, 0, len(f.cfg.Generator.Houses))
	for _, def := range f.cfg.Generator.Houses {
		house, err := f.houseFromDef(def)
		if err != nil {
			return fmt.Errorf("failed to set up house %q: %w", def.HouseID, err)
		}
		houses = append(houses, house)
	}
	if len(houses) == 0 {
		return fmt.Errorf("%w: no houses configured", model.ErrInvalidConfig)
	}

	numWorkers := f.cfg.Generator.NumWorkers
	if numWorkers <= 0 {
		numWorkers = defaultNumWorkers
	}
	if numWorkers > len(houses) {
		numWorkers = len(houses)
	}

	jobs := make(chan *HouseSimulator, len(houses))
	outcomes := make(chan runOutcome, len(houses))

	f.workerWg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go f.worker(ctx, jobs, outcomes)
	}
	f.collectorWg.Add(1)
	go f.collect(ctx, outcomes)
	log.Printf("Fleet started with %d workers for %d houses.", numWorkers, len(houses))

	for _, house := range houses {
		jobs <- house
	}
	close(jobs)

	f.workerWg.Wait()
	close(outcomes)
	f.collectorWg.Wait()

	if f.written == 0 {
		return fmt.Errorf("all %d house runs failed", len(houses))
	}
	log.Printf("Fleet complete: %d of %d runs written, %d failed.", f.written, len(houses), f.failed)
	return nil
}

func (f *Fleet) worker(ctx context.Context, jobs <-chan *HouseSimulator, outcomes chan<- runOutcome) {
	defer f.workerWg.Done()
	for house := range jobs {
		if ctx.Err() != nil {
			outcomes <- runOutcome{houseID: house.params.HouseID, err: ctx.Err()}
			continue
		}
		result, err := house.Run(ctx)
		outcomes <- runOutcome{houseID: house.params.HouseID, result: result, err: err}
	}
}

func (f *Fleet) collect(ctx context.Context, outcomes <-chan runOutcome) {
	defer f.collectorWg.Done()
	for oc := range outcomes {
		if oc.err != nil {
			log.Printf("House %s failed: %v", oc.houseID, oc.err)
			f.failed++
			continue
		}
		for _, w := range f.writers {
			if err := w.Write(ctx, oc.result); err != nil {
				log.Printf("Error writing run %s via %s writer: %v", oc.result.RunID, w.Name(), err)
			}
		}
		f.written++
	}
}

// houseFromDef assembles a house simulator from its config definition,
// including its scheduled events. Event durations of zero or less translate
// to open-ended events.
func (f *Fleet) houseFromDef(def config.HouseDef) (*HouseSimulator, error) {
	var start time.Time
	if def.StartTime != "" {
		var err error
		start, err = time.Parse(time.RFC3339, def.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%w: start_time %q is not RFC3339", model.ErrInvalidConfig, def.StartTime)
		}
	}

	house, err := NewHouseSimulator(f.store, &f.cfg.Generator.Solver, Params{
		HouseID:           def.HouseID,
		Profile:           def.Profile,
		StartTime:         start,
		DurationSeconds:   def.DurationSeconds,
		ResolutionSeconds: def.ResolutionSeconds,
		Seed:              def.Seed,
		LightMode:         def.LightMode,
		EnableTsnet:       def.EnableTsnet,
	})
	if err != nil {
		return nil, err
	}

	for i, ld := range def.Leaks {
		duration := ld.DurationHours
		if duration <= 0 {
			duration = event.NoEnd
		}
		leak, err := event.NewLeak(event.LeakType(ld.Type), ld.Node, ld.StartHours, duration,
			def.Seed+leakSeedOffset+int64(i))
		if err != nil {
			return nil, err
		}
		if err := house.AddLeak(leak); err != nil {
			return nil, err
		}
	}
	for i, bd := range def.Blockages {
		duration := bd.DurationHours
		if duration <= 0 {
			duration = event.NoEnd
		}
		blk, err := event.NewBlockage(event.BlockageType(bd.Type), bd.Pipe, bd.StartHours, duration,
			def.Seed+blockageSeedOffset+int64(i))
		if err != nil {
			return nil, err
		}
		if err := house.AddBlockage(blk); err != nil {
			return nil, err
		}
	}
	return house, nil
}
