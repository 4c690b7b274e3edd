package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"HydroSpectra/internal/catalog"
	"HydroSpectra/internal/config"
	"HydroSpectra/internal/model"
	"HydroSpectra/internal/query"

	"github.com/gorilla/mux"
)

const defaultRowLimit = 10000

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the generator configuration file.")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Find the first enabled ClickHouse writer config
	var chCfg *config.ClickHouseConfig
	for _, writerDef := range cfg.Writers {
		if writerDef.Enabled && writerDef.Type == "clickhouse" {
			chCfg = &writerDef.ClickHouse
			break
		}
	}

	if chCfg == nil {
		log.Fatalf("No enabled ClickHouse writer found in config. API server cannot start.")
	}

	// Initialize querier with the found config
	querier, err := query.NewClickHouseQuerier(*chCfg)
	if err != nil {
		log.Fatalf("Failed to create querier: %v", err)
	}

	// Initialize router
	r := mux.NewRouter()

	// Create API handler with querier dependency
	apiHandler := &APIHandler{querier: querier}

	// The run listing endpoints need the catalog; skip them if it is disabled
	if cfg.Catalog.Enabled {
		cat, err := catalog.Open(cfg.Catalog.Path)
		if err != nil {
			log.Fatalf("Failed to open run catalog: %v", err)
		}
		defer cat.Close()
		apiHandler.catalog = cat
		r.HandleFunc("/api/v1/runs", apiHandler.listRunsHandler).Methods("GET")
		r.HandleFunc("/api/v1/runs/{id}", apiHandler.runHandler).Methods("GET")
	} else {
		log.Println("Run catalog disabled in config; /api/v1/runs endpoints are off.")
	}

	// Define API routes
	r.HandleFunc("/api/v1/runs/{id}/summary", apiHandler.runSummaryHandler).Methods("GET")
	r.HandleFunc("/api/v1/runs/{id}/rows", apiHandler.runRowsHandler).Methods("GET")

	// Start HTTP server
	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: r,
	}

	go func() {
		log.Printf("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("API server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("API server exited.")
}

// APIHandler holds the dependencies for API handlers.
type APIHandler struct {
	querier query.Querier
	catalog *catalog.Catalog
}

// apiRow is the JSON shape of one telemetry row. Measurement fields are
// pointers so that failed steps, which carry NaN, serialize as null.
type apiRow struct {
	TimeS            float64  `json:"time_s"`
	Flow             *float64 `json:"flow"`
	Pressure         *float64 `json:"pressure"`
	Velocity         *float64 `json:"velocity"`
	Leak             bool     `json:"leak"`
	Converged        bool     `json:"converged"`
	VelocityMeasured *float64 `json:"velocity_measured"`
	TransitTimeUp    *float64 `json:"transit_time_up"`
	TransitTimeDown  *float64 `json:"transit_time_down"`
	DeltaT           *float64 `json:"delta_t"`
	SignalQuality    float64  `json:"signal_quality"`
}

func toAPIRows(rows []model.Row) []apiRow {
	out := make([]apiRow, len(rows))
	for i, row := range rows {
		out[i] = apiRow{
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
	return out
}

func nullableFloat(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(jsonBytes)
}

// listRunsHandler lists cataloged runs, filtered by query parameters.
func (h *APIHandler) listRunsHandler(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	filter := catalog.Filter{
		Profile: params.Get("profile"),
		HouseID: params.Get("house"),
	}
	if v := params.Get("leak"); v != "" {
		leakOnly, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid leak parameter: %v", err), http.StatusBadRequest)
			return
		}
		filter.LeakOnly = leakOnly
	}
	if v := params.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid limit parameter: %v", err), http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}

	entries, err := h.catalog.Runs(r.Context(), filter)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to list runs: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, entries)
}

// runHandler returns one cataloged run.
func (h *APIHandler) runHandler(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	entry, err := h.catalog.Run(r.Context(), runID)
	if errors.Is(err, model.ErrRunNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to load run: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, entry)
}

// runSummaryHandler returns aggregated telemetry statistics for one run.
func (h *APIHandler) runSummaryHandler(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	stats, err := h.querier.RunSummary(r.Context(), runID)
	if errors.Is(err, model.ErrRunNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to summarize run: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

// runRowsHandler returns a window of telemetry rows for one run.
func (h *APIHandler) runRowsHandler(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	params := r.URL.Query()

	fromS := 0.0
	toS := 0.0
	limit := defaultRowLimit
	var err error
	if v := params.Get("from"); v != "" {
		if fromS, err = strconv.ParseFloat(v, 64); err != nil {
			http.Error(w, fmt.Sprintf("invalid from parameter: %v", err), http.StatusBadRequest)
			return
		}
	}
	if v := params.Get("to"); v != "" {
		if toS, err = strconv.ParseFloat(v, 64); err != nil {
			http.Error(w, fmt.Sprintf("invalid to parameter: %v", err), http.StatusBadRequest)
			return
		}
	}
	if v := params.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			http.Error(w, fmt.Sprintf("invalid limit parameter: %v", err), http.StatusBadRequest)
			return
		}
	}

	rows, err := h.querier.Rows(r.Context(), runID, fromS, toS, limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to fetch rows: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, toAPIRows(rows))
}
