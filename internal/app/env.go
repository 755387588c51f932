package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/halfmoon-studio/studiodesk/internal/config"
	"github.com/halfmoon-studio/studiodesk/internal/output"
	"github.com/halfmoon-studio/studiodesk/internal/store"
)

// env is the loaded configuration and open database shared by commands.
type env struct {
	cfg *config.Config
	db  *store.DB
}

// Close releases the database.
func (e *env) Close() {
	if err := e.db.Close(); err != nil {
		verbosef("closing database: %v", err)
	}
}

// openEnv loads config, applies color settings and opens the database.
func openEnv() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	verbosef("using database %s", cfg.DBPath)
	return &env{cfg: cfg, db: db}, nil
}

// loadConfig loads config and applies color settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	switch {
	case flagNoColor || !cfg.Output.Color:
		output.SetNoColor(true)
	default:
		output.AutoColor(os.Stdout)
	}
	output.SetWidth(cfg.Output.Width)
	return cfg, nil
}

// verbosef logs an operational message when --verbose is set.
func verbosef(format string, args ...any) {
	if flagVerbose {
		log.Printf(format, args...)
	}
}

// printJSON writes v as indented JSON to the command's output.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

// parseID parses a numeric row ID argument.
func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, s)
	}
	return id, nil
}
