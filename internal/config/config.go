package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LeakDef defines a single leak event from the config file. A duration of
// zero or less means the leak never seals.
type LeakDef struct {
	Type          string  `yaml:"type"`
	Node          string  `yaml:"node"`
	StartHours    float64 `yaml:"start_hours"`
	DurationHours float64 `yaml:"duration_hours"`
}

// BlockageDef defines a single blockage event from the config file.
type BlockageDef struct {
	Type          string  `yaml:"type"`
	Pipe          string  `yaml:"pipe"`
	StartHours    float64 `yaml:"start_hours"`
	DurationHours float64 `yaml:"duration_hours"`
}

// HouseDef defines one simulated house from the config file.
type HouseDef struct {
	HouseID           string        `yaml:"house_id"`
	Profile           string        `yaml:"profile"`
	StartTime         string        `yaml:"start_time"` // RFC3339; empty means now
	DurationSeconds   float64       `yaml:"duration_seconds"`
	ResolutionSeconds float64       `yaml:"resolution_seconds"`
	Seed              int64         `yaml:"seed"`
	LightMode         bool          `yaml:"light_mode"`
	EnableTsnet       bool          `yaml:"enable_tsnet"`
	Leaks             []LeakDef     `yaml:"leaks"`
	Blockages         []BlockageDef `yaml:"blockages"`
}

// SolverConfig holds the numerical settings shared by the hydraulic solvers.
type SolverConfig struct {
	TolerancePa   float64 `yaml:"tolerance_pa"`
	MaxIterations int     `yaml:"max_iterations"`
	SurgeDampingS float64 `yaml:"surge_damping_s"`
}

// GeneratorConfig holds the configuration for the simulation fleet.
type GeneratorConfig struct {
	Solver       SolverConfig `yaml:"solver"`
	NumWorkers   int          `yaml:"num_workers"`
	ProfilesPath string       `yaml:"profiles_path"` // optional extra profiles, YAML
	Houses       []HouseDef   `yaml:"houses"`
}

// GobWriterConfig holds settings for the gob archive writer.
type GobWriterConfig struct {
	RootPath string `yaml:"root_path"`
}

// CSVWriterConfig holds settings for the CSV table writer.
type CSVWriterConfig struct {
	RootPath string `yaml:"root_path"`
}

// ClickHouseConfig holds connection settings for the ClickHouse writer and
// the query service.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// KafkaConfig holds settings for the Kafka row writer.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// WriterDef defines a single result writer from the config file.
type WriterDef struct {
	Type       string           `yaml:"type"`
	Enabled    bool             `yaml:"enabled"`
	Gob        GobWriterConfig  `yaml:"gob"`
	CSV        CSVWriterConfig  `yaml:"csv"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	Kafka      KafkaConfig      `yaml:"kafka"`
}

// StreamConfig holds settings for live row streaming over NATS.
type StreamConfig struct {
	Enabled bool   `yaml:"enabled"`
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// CatalogConfig holds settings for the run catalog database.
type CatalogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// APIConfig holds settings for the REST query service.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
	Writers   []WriterDef     `yaml:"writers"`
	Stream    StreamConfig    `yaml:"stream"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	API       APIConfig       `yaml:"api"`
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	return &cfg, nil
}
