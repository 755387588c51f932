package watcher

import (
	"strings"
	"testing"
	"time"

	"github.com/halfmoon-studio/studiodesk/internal/health"
)

var t0 = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func state(ps ...ProjectState) *WatchState {
	s := &WatchState{Timestamp: t0, Projects: make(map[int64]ProjectState)}
	for _, p := range ps {
		s.Projects[p.ID] = p
	}
	return s
}

func proj(id int64, name string, h health.Health, score int, reasons ...string) ProjectState {
	return ProjectState{ID: id, Name: name, Health: h, Score: score, Reasons: reasons}
}

func findAlert(alerts []Alert, level, titlePrefix string) *Alert {
	for i := range alerts {
		if alerts[i].Level == level && strings.HasPrefix(alerts[i].Title, titlePrefix) {
			return &alerts[i]
		}
	}
	return nil
}

func TestCompare_NoChanges(t *testing.T) {
	s := state(proj(1, "bakery", health.OnTrack, 0), proj(2, "florist", health.AtRisk, 4))
	alerts := Compare(s, s)
	if len(alerts) != 0 {
		t.Errorf("expected no alerts, got %+v", alerts)
	}
}

func TestCompare_BecameOverdue(t *testing.T) {
	prev := state(proj(1, "museum", health.AtRisk, 4, "Blocked tasks: 2"))
	curr := state(proj(1, "museum", health.Overdue, 10, "Deadline passed"))

	alerts := Compare(prev, curr)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d: %+v", len(alerts), alerts)
	}
	a := alerts[0]
	if a.Level != "critical" || a.Title != "Overdue: museum" {
		t.Errorf("unexpected alert %+v", a)
	}
	want := "AT_RISK -> OVERDUE (score 4 -> 10): Deadline passed"
	if a.Message != want {
		t.Errorf("message = %q, want %q", a.Message, want)
	}
	if !a.Time.Equal(t0) {
		t.Errorf("alert time = %v, want snapshot time", a.Time)
	}
}

func TestCompare_OnTrackToOverdueIsCriticalOnly(t *testing.T) {
	prev := state(proj(1, "museum", health.OnTrack, 0))
	curr := state(proj(1, "museum", health.Overdue, 10, "Deadline passed"))

	alerts := Compare(prev, curr)
	if len(alerts) != 1 || alerts[0].Level != "critical" {
		t.Errorf("expected a single critical alert, got %+v", alerts)
	}
}

func TestCompare_BecameAtRisk(t *testing.T) {
	prev := state(proj(1, "florist", health.OnTrack, 1))
	curr := state(proj(1, "florist", health.AtRisk, 4, "Blocked tasks: 2", "Overdue milestones: 1"))

	alerts := Compare(prev, curr)
	a := findAlert(alerts, "warning", "At risk: florist")
	if a == nil {
		t.Fatalf("expected at-risk warning, got %+v", alerts)
	}
	if !strings.Contains(a.Message, "Blocked tasks: 2; Overdue milestones: 1") {
		t.Errorf("message missing reasons: %q", a.Message)
	}
}

func TestCompare_Recovery(t *testing.T) {
	prev := state(
		proj(1, "bakery", health.AtRisk, 3),
		proj(2, "gym", health.Overdue, 7),
	)
	curr := state(
		proj(1, "bakery", health.OnTrack, 0),
		proj(2, "gym", health.AtRisk, 4),
	)

	alerts := Compare(prev, curr)
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %+v", alerts)
	}
	if alerts[0].Title != "Back on track: bakery" || alerts[0].Level != "info" {
		t.Errorf("unexpected first alert %+v", alerts[0])
	}
	if alerts[1].Title != "Improving: gym" || alerts[1].Level != "info" {
		t.Errorf("unexpected second alert %+v", alerts[1])
	}
}

func TestCompare_NewAndRemovedProjects(t *testing.T) {
	prev := state(proj(1, "old-site", health.OnTrack, 0))
	curr := state(proj(2, "new-site", health.Overdue, 10, "Deadline passed"))

	alerts := Compare(prev, curr)
	if findAlert(alerts, "info", "New project: new-site") == nil {
		t.Errorf("expected new project alert, got %+v", alerts)
	}
	if findAlert(alerts, "info", "Project removed: old-site") == nil {
		t.Errorf("expected removed project alert, got %+v", alerts)
	}
	if findAlert(alerts, "critical", "") != nil {
		t.Error("a project first seen as OVERDUE should not raise a critical alert")
	}
}

func TestCompare_LevelOrdering(t *testing.T) {
	prev := state(
		proj(1, "a", health.AtRisk, 3),
		proj(2, "b", health.OnTrack, 0),
		proj(3, "c", health.OnTrack, 0),
	)
	curr := state(
		proj(1, "a", health.OnTrack, 0),
		proj(2, "b", health.AtRisk, 3),
		proj(3, "c", health.Overdue, 6),
	)

	alerts := Compare(prev, curr)
	var levels []string
	for _, a := range alerts {
		levels = append(levels, a.Level)
	}
	if strings.Join(levels, ",") != "critical,warning,info" {
		t.Errorf("unexpected level order %v", levels)
	}
}

func TestDescribe_NoReasons(t *testing.T) {
	got := describe(proj(1, "x", health.AtRisk, 3), proj(1, "x", health.OnTrack, 0))
	if got != "AT_RISK -> ON_TRACK (score 3 -> 0)" {
		t.Errorf("describe = %q", got)
	}
}
