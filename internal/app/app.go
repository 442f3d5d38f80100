// Package app wires configuration, logging, storage and the reconciliation
// engine. It is the shared core used by cmd/folio and cmd/folio-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/services/portfolio"
	"github.com/bobmcallan/folio/internal/storage"
)

// App holds the loaded configuration, the logger and the snapshot store.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Store       interfaces.SnapshotStore
	StartupTime time.Time

	// EngineOptions are applied to every per-import engine.
	EngineOptions []portfolio.Option

	importMu sync.Mutex
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and opens storage.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()
	common.LoadVersionFile(binDir)

	// Load configuration - check provided path, FOLIO_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	a, err := NewAppWithConfig(config, logger)
	if err != nil {
		return nil, err
	}
	a.StartupTime = startupStart

	logger.Info().Dur("startup", time.Since(startupStart)).Str("storage", config.StorageDescription()).Msg("App initialized")
	return a, nil
}

// NewAppWithConfig opens storage for an already loaded configuration.
func NewAppWithConfig(config *common.Config, logger *common.Logger) (*App, error) {
	store, err := storage.NewSnapshotStore(context.Background(), logger, config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return &App{
		Config:      config,
		Logger:      logger,
		Store:       store,
		StartupTime: time.Now(),
	}, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close snapshot store")
		}
		a.Store = nil
	}
}
