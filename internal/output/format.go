package output

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/halfmoon-studio/studiodesk/internal/health"
)

// HealthBadge renders a health classification in its signal color.
func HealthBadge(h health.Health) string {
	label := string(h)
	switch h {
	case health.OnTrack:
		return StyleSuccess.Render(label)
	case health.AtRisk:
		return StyleWarning.Render(label)
	case health.Overdue:
		return StyleError.Bold(true).Render(label)
	default:
		return StyleMuted.Render(label)
	}
}

// RelativeTime renders t relative to now ("3 days ago", "2 weeks from now").
// A zero time renders as "never".
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// Date renders t as YYYY-MM-DD, or "-" when t is zero.
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// Money renders a whole-currency amount with thousands separators.
func Money(currency string, amount float64) string {
	return currency + humanize.Commaf(float64(int64(amount+0.5)))
}
