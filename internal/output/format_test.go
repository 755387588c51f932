package output

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/halfmoon-studio/studiodesk/internal/health"
)

func TestHealthBadge_Plain(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	assert.Equal(t, "ON_TRACK", HealthBadge(health.OnTrack))
	assert.Equal(t, "AT_RISK", HealthBadge(health.AtRisk))
	assert.Equal(t, "OVERDUE", HealthBadge(health.Overdue))
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "never", RelativeTime(time.Time{}, now))
	assert.Equal(t, "3 days ago", RelativeTime(now.AddDate(0, 0, -3), now))
	assert.Contains(t, RelativeTime(now.AddDate(0, 0, 14), now), "from now")
}

func TestDate(t *testing.T) {
	assert.Equal(t, "-", Date(time.Time{}))
	assert.Equal(t, "2026-03-10", Date(time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$1,250", Money("$", 1250))
	assert.Equal(t, "€12,000", Money("€", 11999.6))
	assert.Equal(t, "$0", Money("$", 0))
}

func TestProgressBar(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	assert.Equal(t, "█████░░░░░ 50%", ProgressBar(50, 10))
	assert.Equal(t, "██████████ 150%", ProgressBar(150, 10))
	assert.Equal(t, strings.Repeat("░", 20)+" 0%", ProgressBar(0, 0))
}

func TestScoreDelta(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	assert.Equal(t, "─", ScoreDelta(0))
	assert.Equal(t, "▲ +3", ScoreDelta(3))
	assert.Equal(t, "▼ -2", ScoreDelta(-2))
}

func TestTable_AlignsStyledCells(t *testing.T) {
	tbl := NewTable("Project", "Health")
	tbl.AddRow("a", "\x1b[31mOVERDUE\x1b[0m")
	tbl.AddRow("bbbbbbb", "ON_TRACK")

	assert.Equal(t, []int{7, 8}, tbl.widths)
}
