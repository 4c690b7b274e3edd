package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"HydroSpectra/internal/export"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./scripts/gobana/main.go <gob_file> [rows]")
		os.Exit(1)
	}
	gobFile := os.Args[1]

	n := 10
	if len(os.Args) > 2 {
		parsed, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("Invalid row count %q: %v", os.Args[2], err)
		}
		n = parsed
	}

	result, err := export.LoadResult(gobFile)
	if err != nil {
		log.Fatalf("Failed to decode gob data: %v", err)
	}

	fmt.Printf("Run %s\n", result.RunID)
	fmt.Printf("  house=%s profile=%s start=%s\n",
		result.HouseID, result.Profile, result.StartTime.Format(time.RFC3339))
	fmt.Printf("  duration=%.0fs resolution=%.0fs seed=%d light=%v transient=%v\n",
		result.DurationSeconds, result.ResolutionSeconds, result.Seed, result.LightMode, result.TransientSolve)
	fmt.Printf("  rows=%d leak=%d failed=%d\n", len(result.Rows), result.LeakRows(), result.FailedRows())

	if n > len(result.Rows) {
		n = len(result.Rows)
	}
	fmt.Println("First rows:")
	fmt.Println("      t(s)   flow(gpm)  press(psi)    v(m/s)   leak  conv  quality")
	for _, row := range result.Rows[:n] {
		fmt.Printf("%10.0f  %10.4f  %10.3f  %8.4f  %5v %5v %8.2f\n",
			row.TimeS, row.Flow, row.Pressure, row.Velocity, row.Leak, row.Converged, row.SignalQuality)
	}
}
