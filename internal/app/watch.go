package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/halfmoon-studio/studiodesk/internal/config"
	"github.com/halfmoon-studio/studiodesk/internal/output"
	"github.com/halfmoon-studio/studiodesk/internal/store"
	"github.com/halfmoon-studio/studiodesk/internal/watcher"
)

var (
	watchDaemon   bool
	watchInterval string
	watchStop     bool
	watchQuiet    bool
	watchRecord   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor project health and alert when projects slip",
	Long: `Rescore every project on an interval and raise an alert when health
changes: critical when a project becomes OVERDUE, warning when it slips from
ON_TRACK to AT_RISK, info when it recovers or when projects are added or
removed. Alerts go to desktop notifications and the terminal.

--daemon writes a PID file and logs to ~/.config/studiodesk/watch.log
instead of the terminal; start it in the background with nohup or your
service manager.

Examples:
  studiodesk watch                     # run in foreground (ctrl-c to stop)
  studiodesk watch --interval 5m       # check every 5 minutes (default: watch.interval)
  studiodesk watch --record            # store a snapshot whenever health changes
  nohup studiodesk watch --daemon &    # run in the background
  studiodesk watch --stop              # stop the background daemon`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "Write a PID file and log to the watch log instead of the terminal")
	watchCmd.Flags().StringVar(&watchInterval, "interval", "", "Check interval as duration string (e.g. 5m, 1h)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "Stop a running background daemon")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress terminal output, only send notifications")
	watchCmd.Flags().BoolVar(&watchRecord, "record", false, "Store a health snapshot whenever a project's health changes")
	rootCmd.AddCommand(watchCmd)
}

func pidFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.pid")
}

func logFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.log")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchStop {
		return stopDaemon(cmd.OutOrStdout())
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	raw := watchInterval
	if raw == "" {
		raw = cfg.Watch.Interval
	}
	interval, err := parseInterval(raw)
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals...)
	defer stop()

	if watchDaemon {
		return runDaemon(ctx, cfg, db, interval)
	}
	return runForeground(ctx, cmd.OutOrStdout(), cfg, db, interval)
}

// parseInterval validates a check interval.
func parseInterval(raw string) (time.Duration, error) {
	interval, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", raw, err)
	}
	if interval < 30*time.Second {
		return 0, fmt.Errorf("interval must be at least 30s, got %s", interval)
	}
	return interval, nil
}

// newWatcher builds a watcher over db, recording snapshots when asked.
func newWatcher(cfg *config.Config, db *store.DB, interval time.Duration, alertFn func(watcher.Alert)) *watcher.Watcher {
	w := watcher.New(db, cfg.HealthConfig(), interval, alertFn)
	if watchRecord {
		w.Recorder = db
	}
	return w
}

// runForeground runs the watcher with live terminal output until ctx ends.
func runForeground(ctx context.Context, out io.Writer, cfg *config.Config, db *store.DB, interval time.Duration) error {
	alertFn := func(a watcher.Alert) {
		_ = watcher.Notify(a)
		if !watchQuiet {
			printAlert(out, a)
		}
	}
	w := newWatcher(cfg, db, interval, alertFn)

	initial, err := w.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("initial snapshot failed: %w", err)
	}
	if !watchQuiet {
		s := initial.Summary
		fmt.Fprintf(out, "studiodesk watching %d projects every %s\n", s.Total, interval)
		fmt.Fprintf(out, "[%s] %s %d on track, %d at risk, %d overdue\n",
			initial.Timestamp.Local().Format("15:04:05"), alertIcon(watcher.LevelInfo),
			s.OnTrack, s.AtRisk, s.Overdue)
	}

	if err := w.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	if !watchQuiet {
		fmt.Fprintln(out, "\nStopped.")
	}
	return nil
}

// runDaemon holds the PID file and logs alerts to the watch log until ctx
// ends. Backgrounding is left to the caller.
func runDaemon(ctx context.Context, cfg *config.Config, db *store.DB, interval time.Duration) error {
	if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	release, err := acquirePID()
	if err != nil {
		return err
	}
	defer release()

	logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()
	logger := log.New(logFile, "", log.LstdFlags)

	logger.Printf("watch daemon started (PID %d, interval %s, db %s)", os.Getpid(), interval, cfg.DBPath)
	alertFn := func(a watcher.Alert) {
		_ = watcher.Notify(a)
		logger.Printf("[%s] %s: %s", a.Level, a.Title, a.Message)
	}

	if err := newWatcher(cfg, db, interval, alertFn).Run(ctx); !errors.Is(err, context.Canceled) {
		logger.Printf("watch daemon failed: %v", err)
		return err
	}
	logger.Printf("watch daemon stopped")
	return nil
}

// acquirePID writes this process's PID file, refusing when another live
// daemon holds it. A stale file is replaced.
func acquirePID() (release func(), err error) {
	if pid, err := readPID(); err == nil {
		if processExists(pid) {
			return nil, fmt.Errorf("daemon already running (PID %d). Use --stop to stop it", pid)
		}
		verbosef("removing stale PID file for %d", pid)
	}
	if err := os.WriteFile(pidFilePath(), []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return nil, fmt.Errorf("writing PID file: %w", err)
	}
	return func() { _ = os.Remove(pidFilePath()) }, nil
}

// readPID reads the daemon PID from the PID file.
func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// printAlert writes an alert as a timestamped terminal line.
func printAlert(out io.Writer, a watcher.Alert) {
	fmt.Fprintf(out, "[%s] %s %s\n", a.Time.Local().Format("15:04:05"), alertIcon(a.Level), a.Title)
	if a.Message != "" {
		fmt.Fprintf(out, "           %s\n", output.StyleMuted.Render(a.Message))
	}
}

// alertIcon returns the styled terminal marker for an alert level.
func alertIcon(level string) string {
	switch level {
	case watcher.LevelCritical:
		return output.StyleError.Render("●")
	case watcher.LevelWarning:
		return output.StyleWarning.Render("▲")
	case watcher.LevelInfo:
		return output.StyleSuccess.Render("✓")
	default:
		return " "
	}
}
