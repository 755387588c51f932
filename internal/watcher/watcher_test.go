package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/halfmoon-studio/studiodesk/internal/health"
	"github.com/halfmoon-studio/studiodesk/internal/store"
)

// fakeSource serves a mutable set of projects and inputs.
type fakeSource struct {
	mu       sync.Mutex
	projects []store.Project
	inputs   map[int64]health.Input
	err      error
}

func (f *fakeSource) ListProjects(store.ProjectFilter) ([]store.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]store.Project(nil), f.projects...), nil
}

func (f *fakeSource) ProjectSignals(id int64, _ time.Time) (health.Input, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inputs[id], nil
}

func (f *fakeSource) set(id int64, in health.Input) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs[id] = in
}

type fakeRecorder struct {
	calls []int64
	err   error
}

func (r *fakeRecorder) InsertHealthSnapshot(projectID int64, _ time.Time, _ health.Result) (int64, error) {
	r.calls = append(r.calls, projectID)
	return int64(len(r.calls)), r.err
}

func newWatcher(src *fakeSource) *Watcher {
	w := New(src, health.DefaultConfig(), time.Minute, nil)
	w.Now = func() time.Time { return t0 }
	return w
}

func newSource() *fakeSource {
	return &fakeSource{
		projects: []store.Project{{ID: 1, Name: "bakery"}, {ID: 2, Name: "florist"}},
		inputs: map[int64]health.Input{
			1: {Status: health.StatusDevelopment},
			2: {Status: health.StatusDevelopment},
		},
	}
}

func TestSnapshot(t *testing.T) {
	src := newSource()
	src.set(2, health.Input{Status: health.StatusDevelopment, BlockedTasksCount: 5})

	state, err := newWatcher(src).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Summary.Total != 2 || state.Summary.AtRisk != 1 || state.Summary.OnTrack != 1 {
		t.Errorf("unexpected summary %+v", state.Summary)
	}
	if got := state.Projects[2]; got.Health != health.AtRisk || got.Score != 3 {
		t.Errorf("unexpected florist state %+v", got)
	}
	if !state.Timestamp.Equal(t0) {
		t.Errorf("timestamp = %v", state.Timestamp)
	}
}

func TestCheck_DetectsTransitionAndDedups(t *testing.T) {
	src := newSource()
	w := newWatcher(src)

	// First check establishes the baseline: every project is new.
	first := w.Check(context.Background())
	if len(first) != 0 {
		t.Errorf("expected no alerts without a previous state, got %+v", first)
	}

	src.set(1, health.Input{Status: health.StatusDevelopment, Deadline: t0.Add(-time.Hour)})
	alerts := w.Check(context.Background())
	if len(alerts) != 1 || alerts[0].Title != "Overdue: bakery" {
		t.Fatalf("expected overdue alert, got %+v", alerts)
	}

	// Nothing changed: the transition is not reported again.
	if again := w.Check(context.Background()); len(again) != 0 {
		t.Errorf("expected no alerts on unchanged state, got %+v", again)
	}
}

func TestCheck_SnapshotError(t *testing.T) {
	src := newSource()
	src.err = errors.New("database is locked")

	alerts := newWatcher(src).Check(context.Background())
	if len(alerts) != 1 || alerts[0].Title != "Snapshot failed" {
		t.Errorf("expected snapshot failure alert, got %+v", alerts)
	}
}

func TestCheck_RecordsChangedProjects(t *testing.T) {
	src := newSource()
	rec := &fakeRecorder{}
	w := newWatcher(src)
	w.Recorder = rec

	w.Check(context.Background())
	if len(rec.calls) != 2 {
		t.Fatalf("expected both projects recorded on first cycle, got %v", rec.calls)
	}

	src.set(2, health.Input{Status: health.StatusDevelopment, ScopeGrowthPctLast7d: 30})
	w.Check(context.Background())
	if len(rec.calls) != 3 || rec.calls[2] != 2 {
		t.Errorf("expected only florist recorded, got %v", rec.calls)
	}
}

func TestCheck_RecorderErrorAlerts(t *testing.T) {
	var got []Alert
	src := newSource()
	w := New(src, health.DefaultConfig(), time.Minute, func(a Alert) { got = append(got, a) })
	w.Now = func() time.Time { return t0 }
	w.Recorder = &fakeRecorder{err: errors.New("disk full")}

	w.Check(context.Background())
	if len(got) != 2 || got[0].Title != "Snapshot not saved" {
		t.Errorf("expected recorder failure alerts, got %+v", got)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := newWatcher(newSource())

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
