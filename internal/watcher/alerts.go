package watcher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/halfmoon-studio/studiodesk/internal/health"
)

// Compare detects health transitions between two watch states and returns
// alerts. Critical alerts come first, then warnings, then info; within a
// level alerts are ordered by project name.
func Compare(prev, curr *WatchState) []Alert {
	var alerts []Alert

	alerts = append(alerts, compareCritical(prev, curr)...)
	alerts = append(alerts, compareWarning(prev, curr)...)
	alerts = append(alerts, compareInfo(prev, curr)...)

	return alerts
}

// compareCritical reports projects that just became OVERDUE.
func compareCritical(prev, curr *WatchState) []Alert {
	var alerts []Alert
	for _, p := range sortedProjects(curr) {
		old, existed := prev.Projects[p.ID]
		if !existed || p.Health != health.Overdue || old.Health == health.Overdue {
			continue
		}
		alerts = append(alerts, Alert{
			Level:   LevelCritical,
			Title:   fmt.Sprintf("Overdue: %s", p.Name),
			Message: describe(old, p),
			Time:    curr.Timestamp,
		})
	}
	return alerts
}

// compareWarning reports projects that slipped from ON_TRACK to AT_RISK.
func compareWarning(prev, curr *WatchState) []Alert {
	var alerts []Alert
	for _, p := range sortedProjects(curr) {
		old, existed := prev.Projects[p.ID]
		if !existed || p.Health != health.AtRisk || old.Health != health.OnTrack {
			continue
		}
		alerts = append(alerts, Alert{
			Level:   LevelWarning,
			Title:   fmt.Sprintf("At risk: %s", p.Name),
			Message: describe(old, p),
			Time:    curr.Timestamp,
		})
	}
	return alerts
}

// compareInfo reports recoveries, new projects and removed projects.
func compareInfo(prev, curr *WatchState) []Alert {
	var alerts []Alert

	for _, p := range sortedProjects(curr) {
		old, existed := prev.Projects[p.ID]
		switch {
		case !existed:
			alerts = append(alerts, Alert{
				Level:   LevelInfo,
				Title:   fmt.Sprintf("New project: %s", p.Name),
				Message: fmt.Sprintf("Starting at %s (score %d)", p.Health, p.Score),
				Time:    curr.Timestamp,
			})
		case p.Health.Severity() < old.Health.Severity():
			title := fmt.Sprintf("Improving: %s", p.Name)
			if p.Health == health.OnTrack {
				title = fmt.Sprintf("Back on track: %s", p.Name)
			}
			alerts = append(alerts, Alert{
				Level:   LevelInfo,
				Title:   title,
				Message: describe(old, p),
				Time:    curr.Timestamp,
			})
		}
	}

	for _, p := range sortedProjects(prev) {
		if _, ok := curr.Projects[p.ID]; ok {
			continue
		}
		alerts = append(alerts, Alert{
			Level:   LevelInfo,
			Title:   fmt.Sprintf("Project removed: %s", p.Name),
			Message: fmt.Sprintf("Was %s (score %d)", p.Health, p.Score),
			Time:    curr.Timestamp,
		})
	}

	return alerts
}

// describe summarises a transition, including the current top reasons.
func describe(old, p ProjectState) string {
	msg := fmt.Sprintf("%s -> %s (score %d -> %d)", old.Health, p.Health, old.Score, p.Score)
	if len(p.Reasons) > 0 {
		msg += ": " + strings.Join(p.Reasons, "; ")
	}
	return msg
}

func sortedProjects(s *WatchState) []ProjectState {
	out := make([]ProjectState, 0, len(s.Projects))
	for _, p := range s.Projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
