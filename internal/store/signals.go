package store

import (
	"time"

	"github.com/halfmoon-studio/studiodesk/internal/health"
)

// scopeWindow is the trailing window used for scope growth.
const scopeWindow = 7 * 24 * time.Hour

// ProjectSignals derives the scorer input for a project as of now.
//
// Requirement completion is done/total*100 (0 with no requirements).
// Overdue milestones are open milestones due before now. Scope growth is
// the number of requirements created in the last seven days relative to
// the number that existed before the window; an empty baseline counts as
// no growth.
func (db *DB) ProjectSignals(projectID int64, now time.Time) (health.Input, error) {
	p, err := db.GetProject(projectID)
	if err != nil {
		return health.Input{}, err
	}
	return db.signalsFor(p, now)
}

func (db *DB) signalsFor(p *Project, now time.Time) (health.Input, error) {
	in := health.Input{
		Status:            p.Status,
		StartDate:         p.StartDate,
		Deadline:          p.Deadline,
		BlockedTasksCount: p.BlockedTasks,
		LastActivityAt:    p.LastActivityAt,
	}

	var total, done int
	if err := db.conn.QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(CASE WHEN done THEN 1 ELSE 0 END), 0) FROM requirements WHERE project_id = ?",
		p.ID,
	).Scan(&total, &done); err != nil {
		return health.Input{}, err
	}
	if total > 0 {
		in.ReqDonePct = float64(done) / float64(total) * 100
	}

	if err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM milestones WHERE project_id = ? AND done = false AND due_date < ?",
		p.ID, formatTime(now),
	).Scan(&in.OverdueMilestonesCount); err != nil {
		return health.Input{}, err
	}

	windowStart := formatTime(now.Add(-scopeWindow))
	var added, baseline int
	if err := db.conn.QueryRow(
		`SELECT
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN created_at < ? THEN 1 ELSE 0 END), 0)
		 FROM requirements WHERE project_id = ?`,
		windowStart, windowStart, p.ID,
	).Scan(&added, &baseline); err != nil {
		return health.Input{}, err
	}
	if baseline > 0 {
		in.ScopeGrowthPctLast7d = float64(added) / float64(baseline) * 100
	}

	return in, nil
}

// ProjectWithSignals returns a project together with its scorer input.
func (db *DB) ProjectWithSignals(projectID int64, now time.Time) (*Project, health.Input, error) {
	p, err := db.GetProject(projectID)
	if err != nil {
		return nil, health.Input{}, err
	}
	in, err := db.signalsFor(p, now)
	if err != nil {
		return nil, health.Input{}, err
	}
	return p, in, nil
}
