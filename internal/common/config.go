// Package common provides shared utilities for Folio
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Folio
type Config struct {
	Environment string        `toml:"environment"`
	Engine      EngineConfig  `toml:"engine"`
	Loader      LoaderConfig  `toml:"loader"`
	Storage     StorageConfig `toml:"storage"`
	Server      ServerConfig  `toml:"server"`
	Logging     LoggingConfig `toml:"logging"`
}

// EngineConfig holds the reconciliation policy values passed to each engine run.
type EngineConfig struct {
	ActivityWindowDays  int     `toml:"activity_window_days"` // SIP is active when the last installment is at most this many days old
	FuzzyDriftPercent   float64 `toml:"fuzzy_drift_percent"`  // Opt-in Levenshtein drift for the fuzzy fallback; 0 (default) disables it
	FuzzyPrefixLength   int     `toml:"fuzzy_prefix_length"`  // Compact-name prefix length treated as a match; 0 disables it
	CrosscheckTolerance float64 `toml:"crosscheck_tolerance"` // Allowed difference between itemized totals and export summary cells
	DataSource          string  `toml:"data_source"`
}

// LoaderConfig describes where records live inside the three export payloads.
type LoaderConfig struct {
	HeaderRow               int    `toml:"header_row"`  // 0-based row index of the holdings header
	SummaryRow              int    `toml:"summary_row"` // 0-based row index of the invested/current/P&L summary cells
	HoldingsSheet           string `toml:"holdings_sheet"`
	HoldingsRecordsPath     string `toml:"holdings_records_path"` // JSONPath for consolidated JSON holdings
	TransactionsRecordsPath string `toml:"transactions_records_path"`
	PerformanceRecordsPath  string `toml:"performance_records_path"`
}

// StorageConfig selects the snapshot store backend.
type StorageConfig struct {
	Backend   string          `toml:"backend"` // "badger" (default) or "surrealdb"
	Path      string          `toml:"path"`    // badger data directory
	Key       string          `toml:"key"`     // snapshot key; one snapshot per key, full replace
	SurrealDB SurrealDBConfig `toml:"surrealdb"`
}

// SurrealDBConfig holds SurrealDB connection settings.
type SurrealDBConfig struct {
	Address   string `toml:"address"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host                string `toml:"host"`
	Port                int    `toml:"port"`
	ImportRatePerMinute int    `toml:"import_rate_per_minute"`
	MaxUploadMB         int    `toml:"max_upload_mb"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Engine: EngineConfig{
			ActivityWindowDays:  60,
			FuzzyDriftPercent:   0,
			FuzzyPrefixLength:   30,
			CrosscheckTolerance: 0.01,
			DataSource:          "MF Central",
		},
		Loader: LoaderConfig{
			HeaderRow:               11,
			SummaryRow:              9,
			HoldingsRecordsPath:     "$.dtTrxnResult",
			TransactionsRecordsPath: "$.dtTrxnResult",
			PerformanceRecordsPath:  "$",
		},
		Storage: StorageConfig{
			Backend: "badger",
			Path:    "data/portfolio",
			Key:     "portfolio",
			SurrealDB: SurrealDBConfig{
				Address:   "ws://localhost:8000/rpc",
				Username:  "root",
				Password:  "root",
				Namespace: "folio",
				Database:  "folio",
			},
		},
		Server: ServerConfig{
			Host:                "0.0.0.0",
			Port:                8080,
			ImportRatePerMinute: 6,
			MaxUploadMB:         32,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console", "file"},
			FilePath:   "./logs/folio.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// .env is optional; variables already set in the environment win
	_ = godotenv.Load()

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FOLIO_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if backend := os.Getenv("FOLIO_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = strings.ToLower(backend)
	}

	if v := os.Getenv("FOLIO_SURREALDB_ADDRESS"); v != "" {
		config.Storage.SurrealDB.Address = v
	}
	if v := os.Getenv("FOLIO_SURREALDB_USERNAME"); v != "" {
		config.Storage.SurrealDB.Username = v
	}
	if v := os.Getenv("FOLIO_SURREALDB_PASSWORD"); v != "" {
		config.Storage.SurrealDB.Password = v
	}

	if days := os.Getenv("FOLIO_ACTIVITY_WINDOW_DAYS"); days != "" {
		if d, err := strconv.Atoi(days); err == nil && d >= 0 {
			config.Engine.ActivityWindowDays = d
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
