// Package watcher provides background monitoring of the project portfolio,
// detecting health transitions and emitting alerts.
package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/halfmoon-studio/studiodesk/internal/health"
	"github.com/halfmoon-studio/studiodesk/internal/portfolio"
)

// ProjectState is one project's health at a point in time.
type ProjectState struct {
	ID      int64
	Name    string
	Health  health.Health
	Score   int
	Reasons []string
}

// WatchState captures a point-in-time snapshot of the portfolio.
type WatchState struct {
	Timestamp time.Time
	Summary   portfolio.Summary
	Projects  map[int64]ProjectState
}

// Alert represents a notable event detected by the watcher.
type Alert struct {
	Level   string // LevelCritical, LevelWarning or LevelInfo
	Title   string
	Message string
	Time    time.Time
}

// Recorder persists a health result. *store.DB satisfies it.
type Recorder interface {
	InsertHealthSnapshot(projectID int64, computedAt time.Time, r health.Result) (int64, error)
}

// Watcher scores the portfolio at a regular interval and emits alerts when
// a project's health changes.
type Watcher struct {
	src           portfolio.Source
	cfg           health.Config
	interval      time.Duration
	previous      *WatchState
	alertFn       func(Alert)     // callback for emitting alerts
	lastAlertKeys map[string]bool // dedup: suppress repeated identical alerts

	// Recorder, when set, receives a health snapshot for every project
	// whose health differs from the previous cycle.
	Recorder Recorder

	// Now is the clock used for each cycle. Defaults to time.Now.
	Now func() time.Time
}

// New creates a Watcher over the given project source.
func New(src portfolio.Source, cfg health.Config, interval time.Duration, alertFn func(Alert)) *Watcher {
	return &Watcher{
		src:           src,
		cfg:           cfg,
		interval:      interval,
		alertFn:       alertFn,
		lastAlertKeys: make(map[string]bool),
		Now:           time.Now,
	}
}

// Run starts the watch loop. It takes an initial snapshot, then checks at
// every interval. Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	initial, err := w.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}
	w.record(nil, initial)
	w.previous = initial

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			alerts := w.Check(ctx)
			for _, a := range alerts {
				if w.alertFn != nil {
					w.alertFn(a)
				}
			}
		}
	}
}

// Check performs a single check cycle: takes a new snapshot, compares against
// the previous state, updates the previous state, and returns any alerts.
// Identical alerts are suppressed until the underlying data changes.
func (w *Watcher) Check(ctx context.Context) []Alert {
	curr, err := w.Snapshot(ctx)
	if err != nil {
		return []Alert{{
			Level:   LevelWarning,
			Title:   "Snapshot failed",
			Message: fmt.Sprintf("Could not score projects: %v", err),
			Time:    w.Now(),
		}}
	}

	var raw []Alert
	if w.previous != nil {
		raw = Compare(w.previous, curr)
	}
	w.record(w.previous, curr)

	// Deduplicate: suppress alerts with the same title+message as last cycle.
	currentKeys := make(map[string]bool, len(raw))
	var alerts []Alert
	for _, a := range raw {
		key := a.Level + ":" + a.Title + ":" + a.Message
		currentKeys[key] = true
		if !w.lastAlertKeys[key] {
			alerts = append(alerts, a)
		}
	}
	w.lastAlertKeys = currentKeys

	w.previous = curr
	return alerts
}

// Snapshot scores every project as of the watcher's clock.
func (w *Watcher) Snapshot(ctx context.Context) (*WatchState, error) {
	now := w.Now()
	reports, err := portfolio.Evaluate(ctx, w.src, w.cfg, now, portfolio.Options{})
	if err != nil {
		return nil, err
	}

	state := &WatchState{
		Timestamp: now,
		Summary:   portfolio.Summarize(reports),
		Projects:  make(map[int64]ProjectState, len(reports)),
	}
	for _, r := range reports {
		state.Projects[r.Project.ID] = ProjectState{
			ID:      r.Project.ID,
			Name:    r.Project.Name,
			Health:  r.Result.Health,
			Score:   r.Result.Score,
			Reasons: r.Result.Reasons,
		}
	}
	return state, nil
}

// record stores a snapshot for every project that is new or changed health.
func (w *Watcher) record(prev, curr *WatchState) {
	if w.Recorder == nil {
		return
	}
	for id, p := range curr.Projects {
		if prev != nil {
			if old, ok := prev.Projects[id]; ok && old.Health == p.Health {
				continue
			}
		}
		result := health.Result{Health: p.Health, Score: p.Score, Reasons: p.Reasons}
		if _, err := w.Recorder.InsertHealthSnapshot(id, curr.Timestamp, result); err != nil && w.alertFn != nil {
			w.alertFn(Alert{
				Level:   LevelWarning,
				Title:   "Snapshot not saved",
				Message: fmt.Sprintf("Recording health for %s: %v", p.Name, err),
				Time:    curr.Timestamp,
			})
		}
	}
}
