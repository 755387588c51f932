package health

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

const day = 24 * time.Hour

// minPlannedValue keeps the SPI finite on a project's first days.
const minPlannedValue = 0.05

// TimeRisk fires when the deadline is close and requirement progress is
// below the threshold for that window. The critical window is checked first.
func TimeRisk(in Input, cfg Config, now time.Time) (Signal, bool) {
	if in.Deadline.IsZero() {
		return Signal{}, false
	}
	days := int(math.Floor(daysBetween(now, in.Deadline)))

	switch {
	case days <= cfg.CriticalWindowDays && in.ReqDonePct < cfg.ProgressCriticalPct:
		return Signal{
			Dimension: DimensionTime,
			Weight:    4,
			Reason: fmt.Sprintf("Deadline in %dd; progress %s%% < %s%%",
				days, formatNumber(in.ReqDonePct), formatNumber(cfg.ProgressCriticalPct)),
		}, true
	case days <= cfg.WarningWindowDays && in.ReqDonePct < cfg.ProgressWarnPct:
		return Signal{
			Dimension: DimensionTime,
			Weight:    3,
			Reason: fmt.Sprintf("Deadline in %dd; progress %s%% < %s%%",
				days, formatNumber(in.ReqDonePct), formatNumber(cfg.ProgressWarnPct)),
		}, true
	}
	return Signal{}, false
}

// ScheduleRisk compares earned value (requirements done) with planned value
// (share of the planned duration already elapsed).
func ScheduleRisk(in Input, cfg Config, now time.Time) (Signal, bool) {
	if in.Deadline.IsZero() || in.StartDate.IsZero() {
		return Signal{}, false
	}
	spi := SchedulePerformanceIndex(in, now)

	var threshold float64
	var weight int
	switch {
	case spi < cfg.SPICritical:
		threshold, weight = cfg.SPICritical, 3
	case spi < cfg.SPIWarn:
		threshold, weight = cfg.SPIWarn, 2
	default:
		return Signal{}, false
	}
	return Signal{
		Dimension: DimensionSchedule,
		Weight:    weight,
		Reason:    fmt.Sprintf("Behind schedule (SPI %.2f < %s)", spi, formatNumber(threshold)),
	}, true
}

// SchedulePerformanceIndex returns earned value divided by planned value.
// Both dates on in must be set.
func SchedulePerformanceIndex(in Input, now time.Time) float64 {
	planned := math.Max(1, daysBetween(in.StartDate, in.Deadline))
	elapsed := clamp(daysBetween(in.StartDate, now), 0, planned)
	pv := elapsed / planned
	ev := in.ReqDonePct / 100
	return ev / math.Max(pv, minPlannedValue)
}

// BlockedTasks fires on two or more blocked tasks.
func BlockedTasks(in Input, _ Config, _ time.Time) (Signal, bool) {
	return countSignal(DimensionBlocked, in.BlockedTasksCount, 5, 2, "Blocked tasks: %d")
}

// OverdueMilestones fires on any milestone past its due date.
func OverdueMilestones(in Input, _ Config, _ time.Time) (Signal, bool) {
	return countSignal(DimensionMilestone, in.OverdueMilestonesCount, 3, 1, "Overdue milestones: %d")
}

// Staleness fires when nothing has happened on the project for a while.
// Stages that suppress staleness only escape the warning level.
func Staleness(in Input, cfg Config, now time.Time) (Signal, bool) {
	if in.LastActivityAt.IsZero() {
		return Signal{}, false
	}
	days := int(math.Floor(daysBetween(in.LastActivityAt, now)))
	reason := fmt.Sprintf("No activity for %dd", days)

	switch {
	case days >= cfg.StaleCriticalDays:
		return Signal{Dimension: DimensionStaleness, Weight: 2, Reason: reason}, true
	case days >= cfg.StaleWarnDays && !in.Status.SuppressesStaleness():
		return Signal{Dimension: DimensionStaleness, Weight: 1, Reason: reason}, true
	}
	return Signal{}, false
}

// ScopeCreep fires when the requirement count grew noticeably in the last
// seven days.
func ScopeCreep(in Input, _ Config, _ time.Time) (Signal, bool) {
	var weight int
	switch {
	case in.ScopeGrowthPctLast7d >= 20:
		weight = 3
	case in.ScopeGrowthPctLast7d >= 10:
		weight = 2
	default:
		return Signal{}, false
	}
	return Signal{
		Dimension: DimensionScope,
		Weight:    weight,
		Reason:    fmt.Sprintf("Scope grew %s%% last 7d", formatNumber(in.ScopeGrowthPctLast7d)),
	}, true
}

// countSignal maps a count onto weight 3 at or above high, weight 2 at or
// above low.
func countSignal(dim Dimension, n, high, low int, format string) (Signal, bool) {
	var weight int
	switch {
	case n >= high:
		weight = 3
	case n >= low:
		weight = 2
	default:
		return Signal{}, false
	}
	return Signal{Dimension: dim, Weight: weight, Reason: fmt.Sprintf(format, n)}, true
}

func daysBetween(from, to time.Time) float64 {
	return float64(to.Sub(from)) / float64(day)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// formatNumber renders v without trailing zeros: 40, 40.5, 0.85.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
