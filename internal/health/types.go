// Package health scores a project's delivery risk from a snapshot of its
// progress and activity signals.
package health

import (
	"fmt"
	"strings"
	"time"
)

// Status is a project lifecycle stage.
type Status string

// Project lifecycle stages, in delivery order.
const (
	StatusPlanning    Status = "PLANNING"
	StatusDesign      Status = "DESIGN"
	StatusDevelopment Status = "DEVELOPMENT"
	StatusReview      Status = "REVIEW"
	StatusDeployed    Status = "DEPLOYED"
	StatusSupport     Status = "SUPPORT"
)

// Statuses lists every lifecycle stage in delivery order.
var Statuses = []Status{
	StatusPlanning,
	StatusDesign,
	StatusDevelopment,
	StatusReview,
	StatusDeployed,
	StatusSupport,
}

// ParseStatus converts a case-insensitive status name to a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("unknown project status %q", s)
	}
	return st, nil
}

// IsValid reports whether s is one of the known lifecycle stages.
func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// SuppressesStaleness reports whether a project in this stage is exempt
// from the low-grade staleness warning. Only DEPLOYED is exempt; the
// critical staleness threshold still applies to every stage.
func (s Status) SuppressesStaleness() bool {
	return s == StatusDeployed
}

func (s Status) String() string {
	return string(s)
}

// Health is the coarse delivery-risk classification. Values are ordered by
// severity.
type Health string

const (
	OnTrack Health = "ON_TRACK"
	AtRisk  Health = "AT_RISK"
	Overdue Health = "OVERDUE"
)

// Severity returns 0 for ON_TRACK, 1 for AT_RISK and 2 for OVERDUE.
// Unknown values sort below ON_TRACK.
func (h Health) Severity() int {
	switch h {
	case OnTrack:
		return 0
	case AtRisk:
		return 1
	case Overdue:
		return 2
	default:
		return -1
	}
}

func (h Health) String() string {
	return string(h)
}

// Input is a point-in-time snapshot of the signals for one project.
// A zero time.Time means the date is unknown and the dimensions that need
// it are skipped.
type Input struct {
	Status                 Status    `json:"status"`
	StartDate              time.Time `json:"start_date,omitzero"`
	Deadline               time.Time `json:"deadline,omitzero"`
	ReqDonePct             float64   `json:"req_done_pct"`
	BlockedTasksCount      int       `json:"blocked_tasks_count"`
	OverdueMilestonesCount int       `json:"overdue_milestones_count"`
	LastActivityAt         time.Time `json:"last_activity_at,omitzero"`
	ScopeGrowthPctLast7d   float64   `json:"scope_growth_pct_last_7d"`
}

// Result is the outcome of scoring one Input.
type Result struct {
	Health  Health   `json:"health"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// Dimension identifies which risk rule produced a Signal.
type Dimension string

const (
	DimensionTime      Dimension = "time"
	DimensionSchedule  Dimension = "schedule"
	DimensionBlocked   Dimension = "blocked"
	DimensionMilestone Dimension = "milestone"
	DimensionStaleness Dimension = "staleness"
	DimensionScope     Dimension = "scope"
)

// Signal is a single weighted risk contribution.
type Signal struct {
	Dimension Dimension `json:"dimension"`
	Weight    int       `json:"weight"`
	Reason    string    `json:"reason"`
}

// Rule examines an input at a fixed instant and reports at most one signal.
// The boolean is false when the rule does not fire.
type Rule func(in Input, cfg Config, now time.Time) (Signal, bool)
