package health

import "time"

// Score thresholds for classification.
const (
	AtRiskScore  = 3
	OverdueScore = 6

	// DeadlinePassedScore is reported when the deadline is already behind
	// us. It sits above any band so a breached project always ranks first.
	DeadlinePassedScore = 10

	// MaxReasons caps the reasons returned in a Result.
	MaxReasons = 3
)

// Scorer runs an ordered table of rules against an Input.
type Scorer struct {
	rules []Rule
}

// NewScorer creates a Scorer with the built-in rules registered in
// evaluation order. The order is also the tie-break order for reasons.
func NewScorer() *Scorer {
	return &Scorer{
		rules: []Rule{
			TimeRisk,
			ScheduleRisk,
			BlockedTasks,
			OverdueMilestones,
			Staleness,
			ScopeCreep,
		},
	}
}

// Signals evaluates every rule at now and returns the signals that fired,
// in rule order. It returns nil when the deadline has already passed.
func (s *Scorer) Signals(in Input, cfg Config, now time.Time) []Signal {
	if DeadlinePassed(in, now) {
		return nil
	}
	var fired []Signal
	for _, rule := range s.rules {
		if sig, ok := rule(in, cfg, now); ok {
			fired = append(fired, sig)
		}
	}
	return fired
}

// Score classifies in at the instant now. cfg is used as given; callers
// that accept partial configuration should apply Config.WithDefaults first.
func (s *Scorer) Score(in Input, cfg Config, now time.Time) Result {
	if DeadlinePassed(in, now) {
		return Result{
			Health:  Overdue,
			Score:   DeadlinePassedScore,
			Reasons: []string{"Deadline passed"},
		}
	}

	signals := s.Signals(in, cfg, now)
	total := 0
	for _, sig := range signals {
		total += sig.Weight
	}

	ranked := RankSignals(signals)
	if len(ranked) > MaxReasons {
		ranked = ranked[:MaxReasons]
	}
	reasons := make([]string, 0, len(ranked))
	for _, sig := range ranked {
		reasons = append(reasons, sig.Reason)
	}

	return Result{
		Health:  Classify(total),
		Score:   total,
		Reasons: reasons,
	}
}

// DeadlinePassed reports whether in has a deadline strictly before now.
func DeadlinePassed(in Input, now time.Time) bool {
	return !in.Deadline.IsZero() && now.After(in.Deadline)
}

// Classify maps a summed score onto a Health band.
func Classify(score int) Health {
	switch {
	case score >= OverdueScore:
		return Overdue
	case score >= AtRiskScore:
		return AtRisk
	default:
		return OnTrack
	}
}

var builtin = NewScorer()

// Compute scores in against the current wall clock, filling unset config
// fields with defaults.
func Compute(in Input, cfg Config) Result {
	return ComputeAt(in, cfg, time.Now())
}

// ComputeAt scores in at a caller-supplied instant, filling unset config
// fields with defaults.
func ComputeAt(in Input, cfg Config, now time.Time) Result {
	return builtin.Score(in, cfg.WithDefaults(), now)
}
