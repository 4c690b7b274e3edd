package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"HydroSpectra/internal/config"
	"HydroSpectra/internal/export"
	"HydroSpectra/internal/stream"
)

func main() {
	// --- Command-Line Flag Parsing ---
	configPath := flag.String("config", "configs/config.yaml", "Path to the generator configuration file.")
	mode := flag.String("mode", "sub", "Operating mode: 'pub' to replay an archived run, 'sub' to subscribe and print.")
	archive := flag.String("archive", "", "Path to a .gob run archive (required for pub mode).")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// --- Mode Dispatch ---
	switch *mode {
	case "pub":
		runReplay(cfg.Stream, *archive)
	case "sub":
		runSubscriber(cfg.Stream)
	default:
		fmt.Fprintf(os.Stderr, "Invalid mode: %s\n", *mode)
		flag.Usage()
		os.Exit(1)
	}
}

// runReplay publishes an archived run over NATS, row by row.
func runReplay(cfg config.StreamConfig, archivePath string) {
	if archivePath == "" {
		log.Println("Error: -archive flag is required for pub mode.")
		flag.Usage()
		os.Exit(1)
	}
	log.Printf("Starting hs-stream in REPLAY mode for archive: %s", archivePath)

	result, err := export.LoadResult(archivePath)
	if err != nil {
		log.Fatalf("Failed to load archive: %v", err)
	}

	pub, err := stream.NewPublisher(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer pub.Close()

	if err := pub.Write(context.Background(), result); err != nil {
		log.Fatalf("Failed to replay run: %v", err)
	}
	log.Printf("Replayed run %s (%d rows).", result.RunID, len(result.Rows))
}

// runSubscriber subscribes to the telemetry subject tree and prints frames.
func runSubscriber(cfg config.StreamConfig) {
	log.Println("Starting hs-stream in SUBSCRIBER mode...")

	sub, err := stream.NewSubscriber(cfg)
	if err != nil {
		log.Fatalf("Failed to create subscriber: %v", err)
	}
	defer sub.Close()

	// Print one compact line per frame
	handler := func(frame stream.RowFrame) {
		row := frame.ToRow()
		log.Printf("[%s] t=%.0fs flow=%.3f gpm pressure=%.2f psi leak=%v converged=%v",
			frame.HouseID, row.TimeS, row.Flow, row.Pressure, row.Leak, row.Converged)
	}

	// Start listening for frames
	if err := sub.Start(handler); err != nil {
		log.Fatalf("Subscriber failed to start: %v", err)
	}

	// Set up a channel to handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Wait for a shutdown signal
	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
}
