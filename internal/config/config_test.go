package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halfmoon-studio/studiodesk/internal/health"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, health.DefaultConfig(), cfg.Health)
	assert.Equal(t, DefaultWatch, cfg.Watch)
	assert.Equal(t, DefaultEstimate, cfg.Estimate)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DBPath(), cfg.DBPath)
}

func TestLoad_FileOverridesHealthThresholds(t *testing.T) {
	path := writeConfig(t, `
db_path: /tmp/studio-test.db
health:
  warning_window_days: 10
  spi_critical: 0.8
watch:
  interval: 5m
estimate:
  currency: "€"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/studio-test.db", cfg.DBPath)
	assert.Equal(t, 10, cfg.Health.WarningWindowDays)
	assert.Equal(t, 0.8, cfg.Health.SPICritical)
	// Untouched keys keep their defaults.
	assert.Equal(t, 3, cfg.Health.CriticalWindowDays)
	assert.Equal(t, 0.95, cfg.Health.SPIWarn)
	assert.Equal(t, "5m", cfg.Watch.Interval)
	assert.Equal(t, "€", cfg.Estimate.Currency)
	assert.Equal(t, DefaultEstimate.PageRate, cfg.Estimate.PageRate)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("STUDIODESK_HEALTH_STALE_WARN_DAYS", "5")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Health.StaleWarnDays)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "health: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestHealthConfig_FillsZeroes(t *testing.T) {
	cfg := &Config{Health: health.Config{SPIWarn: 0.9}}
	got := cfg.HealthConfig()
	assert.Equal(t, 0.9, got.SPIWarn)
	assert.Equal(t, 14, got.StaleCriticalDays)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x/y"), expandPath("~/x/y"))
	assert.Equal(t, "/abs/path", expandPath("/abs/path"))
}

func TestLoad_RejectsZeroThreshold(t *testing.T) {
	path := writeConfig(t, `
health:
  critical_window_days: 0
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "critical_window_days must be positive")
}
