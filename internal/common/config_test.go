package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 60, cfg.Engine.ActivityWindowDays)
	assert.Equal(t, 11, cfg.Loader.HeaderRow)
	assert.Equal(t, 9, cfg.Loader.SummaryRow)
	assert.Equal(t, "$.dtTrxnResult", cfg.Loader.TransactionsRecordsPath)
	assert.Equal(t, "$", cfg.Loader.PerformanceRecordsPath)
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.Equal(t, "MF Central", cfg.Engine.DataSource)
	assert.Zero(t, cfg.Engine.FuzzyDriftPercent, "drift matching is opt-in")
	assert.False(t, cfg.IsProduction())
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("FOLIO_PORT", "9090")
	t.Setenv("FOLIO_STORAGE_BACKEND", "SurrealDB")
	t.Setenv("FOLIO_ACTIVITY_WINDOW_DAYS", "45")
	t.Setenv("FOLIO_ENV", "prod")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "surrealdb", cfg.Storage.Backend)
	assert.Equal(t, 45, cfg.Engine.ActivityWindowDays)
	assert.True(t, cfg.IsProduction())
}

func TestConfig_EnvOverrides_InvalidIgnored(t *testing.T) {
	t.Setenv("FOLIO_PORT", "not-a-port")
	t.Setenv("FOLIO_ACTIVITY_WINDOW_DAYS", "-3")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 60, cfg.Engine.ActivityWindowDays)
}

func TestLoadConfig_MergesFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	local := filepath.Join(dir, "local.toml")

	require.NoError(t, os.WriteFile(base, []byte(`
environment = "staging"

[engine]
activity_window_days = 30
fuzzy_drift_percent = 5.0

[storage]
path = "/tmp/base"
`), 0o644))
	require.NoError(t, os.WriteFile(local, []byte(`
[storage]
path = "/tmp/local"
`), 0o644))

	cfg, err := LoadConfig(base, filepath.Join(dir, "missing.toml"), local)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 30, cfg.Engine.ActivityWindowDays)
	assert.Equal(t, 5.0, cfg.Engine.FuzzyDriftPercent)
	assert.Equal(t, "/tmp/local", cfg.Storage.Path)
	// untouched sections keep defaults
	assert.Equal(t, 30, cfg.Engine.FuzzyPrefixLength)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[engine\nactivity_window_days = "), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestStorageDescription(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, "badger data/portfolio", cfg.StorageDescription())

	cfg.Storage.Backend = "surrealdb"
	assert.Contains(t, cfg.StorageDescription(), "ws://localhost:8000/rpc")
}

func TestLoadVersionFile(t *testing.T) {
	origVersion, origBuild, origCommit := Version, Build, GitCommit
	t.Cleanup(func() { Version, Build, GitCommit = origVersion, origBuild, origCommit })

	Version, Build, GitCommit = "dev", "unknown", "v-from-ldflags"

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".version"),
		[]byte("# comment\nversion: 1.4.0\nbuild: 2026-01-02\ncommit: abc123\nbogus\n"), 0o644))
	LoadVersionFile(dir)

	info := CurrentBuild()
	assert.Equal(t, "1.4.0", info.Version)
	assert.Equal(t, "2026-01-02", info.Build)
	assert.Equal(t, "v-from-ldflags", info.Commit, "linked values win")
	assert.Equal(t, "1.4.0 (build: 2026-01-02, commit: v-from-ldflags)", info.String())

	LoadVersionFile(filepath.Join(dir, "missing"))
	assert.Equal(t, "1.4.0", Version)
}
