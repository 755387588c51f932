package seed

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halfmoon-studio/studiodesk/internal/health"
	"github.com/halfmoon-studio/studiodesk/internal/store"
)

const sample = `
projects:
  - name: bakery
    client: Crumbs
    status: development
    start_date: 2026-03-01
    deadline: 2026-04-15
    blocked_tasks: 1
    requirements:
      - title: Home page
        done: true
      - title: Menu page
    milestones:
      - title: Design sign-off
        due: 2026-03-08
        done: true
      - title: Launch
        due: 2026-04-15
    updates:
      - Kickoff call done
  - name: florist
`

func TestParse(t *testing.T) {
	f, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, f.Projects, 2)

	p := f.Projects[0]
	assert.Equal(t, "bakery", p.Name)
	assert.Equal(t, "2026-03-01", p.StartDate)
	assert.Len(t, p.Requirements, 2)
	assert.True(t, p.Milestones[0].Done)
	assert.Equal(t, []string{"Kickoff call done"}, p.Updates)
}

func TestParse_Empty(t *testing.T) {
	f, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Projects)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"missing name":      "projects:\n  - client: x\n",
		"bad status":        "projects:\n  - name: a\n    status: archived\n",
		"bad date":          "projects:\n  - name: a\n    deadline: soon\n",
		"duplicate":         "projects:\n  - name: a\n  - name: a\n",
		"milestone no date": "projects:\n  - name: a\n    milestones:\n      - title: m\n",
		"unknown field":     "projects:\n  - name: a\n    budget: 100\n",
		"not yaml":          "projects: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestApply(t *testing.T) {
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	db.SetClock(func() time.Time { return now })

	require.NoError(t, db.CreateProject(&store.Project{Name: "florist"}))

	f, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	res, err := Apply(db, f)
	require.NoError(t, err)
	assert.Equal(t, []string{"bakery"}, res.Created)
	assert.Equal(t, []string{"florist"}, res.Skipped)

	p, err := db.GetProjectByName("bakery")
	require.NoError(t, err)
	assert.Equal(t, health.StatusDevelopment, p.Status)
	assert.Equal(t, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), p.Deadline)
	assert.Equal(t, 1, p.BlockedTasks)

	in, err := db.ProjectSignals(p.ID, now)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, in.ReqDonePct, 1e-9)
	assert.Zero(t, in.OverdueMilestonesCount)

	updates, err := db.ListUpdates(p.ID, 0)
	require.NoError(t, err)
	assert.Len(t, updates, 1)

	// Re-applying is a no-op.
	res, err = Apply(db, f)
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Equal(t, []string{"bakery", "florist"}, res.Skipped)
}
