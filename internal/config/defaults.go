// Package config provides configuration loading and defaults for studiodesk.
package config

import "github.com/halfmoon-studio/studiodesk/internal/health"

// DefaultConfigDir is the default location for studiodesk configuration.
const DefaultConfigDir = "~/.config/studiodesk"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "studiodesk.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultHealth holds the standard project-health thresholds.
var DefaultHealth = health.DefaultConfig()

// DefaultWatch holds the default portfolio monitor settings.
var DefaultWatch = Watch{
	Interval: "30m",
}

// DefaultEstimate holds the default estimate-wizard pricing knobs.
var DefaultEstimate = Estimate{
	PageRate:       150,
	RushMultiplier: 1.25,
	Currency:       "$",
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}
