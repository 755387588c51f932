package output

import (
	"fmt"
	"strings"
)

// ProgressBar renders a visual bar for a 0-100 completion percentage.
// Example: "████████░░ 80%"
func ProgressBar(pct float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int((pct / 100.0) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	var style func(string) string
	switch {
	case pct >= 80:
		style = func(s string) string { return StyleSuccess.Render(s) }
	case pct >= 40:
		style = func(s string) string { return StyleWarning.Render(s) }
	default:
		style = func(s string) string { return StyleError.Render(s) }
	}

	return fmt.Sprintf("%s %s", style(bar), StyleMuted.Render(fmt.Sprintf("%.0f%%", pct)))
}

// ScoreDelta returns a styled indicator for a change in risk score.
// Risk scores are better when lower, so a rise renders as a regression.
func ScoreDelta(delta int) string {
	switch {
	case delta == 0:
		return StyleMuted.Render("─")
	case delta > 0:
		return StyleError.Render(fmt.Sprintf("▲ +%d", delta))
	default:
		return StyleSuccess.Render(fmt.Sprintf("▼ %d", delta))
	}
}

// Section returns a styled section header over a horizontal rule.
func Section(title string) string {
	width := 66
	if lineWidth > 0 && lineWidth-2 < width {
		width = max(lineWidth-2, 10)
	}
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", width))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
