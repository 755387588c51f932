package health

import "fmt"

// Config holds the thresholds used by the scoring rules.
type Config struct {
	WarningWindowDays   int     `json:"warning_window_days" mapstructure:"warning_window_days"`
	CriticalWindowDays  int     `json:"critical_window_days" mapstructure:"critical_window_days"`
	ProgressWarnPct     float64 `json:"progress_warn_pct" mapstructure:"progress_warn_pct"`
	ProgressCriticalPct float64 `json:"progress_critical_pct" mapstructure:"progress_critical_pct"`
	SPIWarn             float64 `json:"spi_warn" mapstructure:"spi_warn"`
	SPICritical         float64 `json:"spi_critical" mapstructure:"spi_critical"`
	StaleWarnDays       int     `json:"stale_warn_days" mapstructure:"stale_warn_days"`
	StaleCriticalDays   int     `json:"stale_critical_days" mapstructure:"stale_critical_days"`
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		WarningWindowDays:   7,
		CriticalWindowDays:  3,
		ProgressWarnPct:     80,
		ProgressCriticalPct: 90,
		SPIWarn:             0.95,
		SPICritical:         0.85,
		StaleWarnDays:       7,
		StaleCriticalDays:   14,
	}
}

// WithDefaults returns a copy of c with every zero field replaced by its
// default value.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.WarningWindowDays == 0 {
		c.WarningWindowDays = d.WarningWindowDays
	}
	if c.CriticalWindowDays == 0 {
		c.CriticalWindowDays = d.CriticalWindowDays
	}
	if c.ProgressWarnPct == 0 {
		c.ProgressWarnPct = d.ProgressWarnPct
	}
	if c.ProgressCriticalPct == 0 {
		c.ProgressCriticalPct = d.ProgressCriticalPct
	}
	if c.SPIWarn == 0 {
		c.SPIWarn = d.SPIWarn
	}
	if c.SPICritical == 0 {
		c.SPICritical = d.SPICritical
	}
	if c.StaleWarnDays == 0 {
		c.StaleWarnDays = d.StaleWarnDays
	}
	if c.StaleCriticalDays == 0 {
		c.StaleCriticalDays = d.StaleCriticalDays
	}
	return c
}

// Validate rejects thresholds that are zero or negative. WithDefaults treats
// zero as unset, so a loaded or overridden zero would otherwise be replaced
// without notice.
func (c Config) Validate() error {
	ints := []struct {
		key string
		v   int
	}{
		{"warning_window_days", c.WarningWindowDays},
		{"critical_window_days", c.CriticalWindowDays},
		{"stale_warn_days", c.StaleWarnDays},
		{"stale_critical_days", c.StaleCriticalDays},
	}
	for _, f := range ints {
		if f.v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", f.key, f.v)
		}
	}
	floats := []struct {
		key string
		v   float64
	}{
		{"progress_warn_pct", c.ProgressWarnPct},
		{"progress_critical_pct", c.ProgressCriticalPct},
		{"spi_warn", c.SPIWarn},
		{"spi_critical", c.SPICritical},
	}
	for _, f := range floats {
		if f.v <= 0 {
			return fmt.Errorf("%s must be positive, got %g", f.key, f.v)
		}
	}
	return nil
}
