package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/halfmoon-studio/studiodesk/internal/health"
)

// Config is the top-level studiodesk configuration.
type Config struct {
	DBPath   string        `mapstructure:"db_path"`
	Health   health.Config `mapstructure:"health"`
	Watch    Watch         `mapstructure:"watch"`
	Estimate Estimate      `mapstructure:"estimate"`
	Output   Output        `mapstructure:"output"`
}

// Watch defines the portfolio monitor settings.
type Watch struct {
	Interval string `mapstructure:"interval"`
}

// Estimate defines pricing knobs for the estimate wizard.
type Estimate struct {
	PageRate       float64 `mapstructure:"page_rate"`
	RushMultiplier float64 `mapstructure:"rush_multiplier"`
	Currency       string  `mapstructure:"currency"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// HealthConfig returns the scorer thresholds with any unset value
// replaced by its default.
func (c *Config) HealthConfig() health.Config {
	return c.Health.WithDefaults()
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("db_path", DBPath())
	v.SetDefault("health.warning_window_days", DefaultHealth.WarningWindowDays)
	v.SetDefault("health.critical_window_days", DefaultHealth.CriticalWindowDays)
	v.SetDefault("health.progress_warn_pct", DefaultHealth.ProgressWarnPct)
	v.SetDefault("health.progress_critical_pct", DefaultHealth.ProgressCriticalPct)
	v.SetDefault("health.spi_warn", DefaultHealth.SPIWarn)
	v.SetDefault("health.spi_critical", DefaultHealth.SPICritical)
	v.SetDefault("health.stale_warn_days", DefaultHealth.StaleWarnDays)
	v.SetDefault("health.stale_critical_days", DefaultHealth.StaleCriticalDays)
	v.SetDefault("watch.interval", DefaultWatch.Interval)
	v.SetDefault("estimate.page_rate", DefaultEstimate.PageRate)
	v.SetDefault("estimate.rush_multiplier", DefaultEstimate.RushMultiplier)
	v.SetDefault("estimate.currency", DefaultEstimate.Currency)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)

	v.SetEnvPrefix("STUDIODESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(ConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Every health key has a default, so a zero here was set explicitly.
	if err := cfg.Health.Validate(); err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}

	cfg.DBPath = expandPath(cfg.DBPath)
	return &cfg, nil
}

// DBPath returns the default full path to the SQLite database.
func DBPath() string {
	return filepath.Join(ConfigDir(), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
