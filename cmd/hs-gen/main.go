package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"HydroSpectra/internal/catalog"
	"HydroSpectra/internal/config"
	"HydroSpectra/internal/export"
	"HydroSpectra/internal/profile"
	"HydroSpectra/internal/sim"
	"HydroSpectra/internal/stream"
)

// batchSeedStride keeps the seed streams of repeated batches disjoint from
// the per-house demand, sensor and event seeds.
const batchSeedStride = 1000000

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the generator configuration file.")
	listProfiles := flag.Bool("list-profiles", false, "List available house profiles and exit.")
	runs := flag.Int("runs", 1, "Repeat the configured fleet this many times with shifted seeds.")
	flag.Parse()

	log.Println("Starting hs-gen...")

	// 1. Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Build the profile store, with optional user-defined profiles
	store := profile.NewStore()
	if cfg.Generator.ProfilesPath != "" {
		if err := store.LoadFile(cfg.Generator.ProfilesPath); err != nil {
			log.Fatalf("Failed to load profiles from %s: %v", cfg.Generator.ProfilesPath, err)
		}
		log.Printf("Loaded extra profiles from %s", cfg.Generator.ProfilesPath)
	}

	if *listProfiles {
		for _, name := range store.Names() {
			fmt.Println(name)
		}
		return
	}

	// 3. Expand repeated batches into additional house runs
	if *runs > 1 {
		houses := cfg.Generator.Houses
		expanded := make([]config.HouseDef, 0, len(houses)*(*runs))
		for b := 0; b < *runs; b++ {
			for _, def := range houses {
				def.Seed += int64(b) * batchSeedStride
				expanded = append(expanded, def)
			}
		}
		cfg.Generator.Houses = expanded
		log.Printf("Expanded %d configured houses into %d runs.", len(houses), len(expanded))
	}

	// 4. Assemble the result sinks: writers, live stream, run catalog
	writers := export.NewWriters(cfg)
	if cfg.Stream.Enabled {
		pub, err := stream.NewPublisher(cfg.Stream)
		if err != nil {
			log.Fatalf("Failed to create NATS publisher: %v", err)
		}
		writers = append(writers, pub)
	}
	if cfg.Catalog.Enabled {
		cat, err := catalog.Open(cfg.Catalog.Path)
		if err != nil {
			log.Fatalf("Failed to open run catalog: %v", err)
		}
		writers = append(writers, cat)
	}

	// 5. Run the fleet, cancelling on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutdown signal received, cancelling fleet...")
		cancel()
	}()

	fleet := sim.NewFleet(cfg, store, writers)
	err = fleet.Run(ctx)
	export.CloseAll(writers)
	if err != nil {
		log.Fatalf("Fleet run failed: %v", err)
	}
	log.Println("hs-gen complete.")
}
