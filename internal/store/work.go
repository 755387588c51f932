package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// AddRequirement adds a checklist item to a project.
func (db *DB) AddRequirement(projectID int64, title string) (*Requirement, error) {
	if title == "" {
		return nil, errors.New("requirement title is required")
	}
	now := db.now().UTC().Truncate(time.Second)
	result, err := db.conn.Exec(
		"INSERT INTO requirements (project_id, title, done, created_at) VALUES (?, ?, false, ?)",
		projectID, title, formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting requirement: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := db.touchProject(projectID); err != nil {
		return nil, err
	}
	return &Requirement{ID: id, ProjectID: projectID, Title: title, CreatedAt: now}, nil
}

// SetRequirementDone marks a requirement done or reopens it.
func (db *DB) SetRequirementDone(id int64, done bool) error {
	var projectID int64
	if err := db.conn.QueryRow("SELECT project_id FROM requirements WHERE id = ?", id).Scan(&projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	doneAt := sql.NullString{}
	if done {
		doneAt = sql.NullString{String: db.stamp(), Valid: true}
	}
	if _, err := db.conn.Exec(
		"UPDATE requirements SET done = ?, done_at = ? WHERE id = ?",
		done, doneAt, id,
	); err != nil {
		return err
	}
	return db.touchProject(projectID)
}

// ListRequirements returns a project's checklist in creation order.
func (db *DB) ListRequirements(projectID int64) ([]Requirement, error) {
	rows, err := db.conn.Query(
		"SELECT id, project_id, title, done, created_at, done_at FROM requirements WHERE project_id = ? ORDER BY id",
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var reqs []Requirement
	for rows.Next() {
		var r Requirement
		var created string
		var doneAt sql.NullString
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.Title, &r.Done, &created, &doneAt); err != nil {
			return nil, err
		}
		r.CreatedAt = parseTime(sql.NullString{String: created, Valid: true})
		r.DoneAt = parseTime(doneAt)
		reqs = append(reqs, r)
	}
	return reqs, rows.Err()
}

// AddMilestone adds a dated checkpoint to a project.
func (db *DB) AddMilestone(projectID int64, title string, due time.Time) (*Milestone, error) {
	if title == "" {
		return nil, errors.New("milestone title is required")
	}
	if due.IsZero() {
		return nil, errors.New("milestone due date is required")
	}
	result, err := db.conn.Exec(
		"INSERT INTO milestones (project_id, title, due_date, done) VALUES (?, ?, ?, false)",
		projectID, title, formatTime(due),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting milestone: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := db.touchProject(projectID); err != nil {
		return nil, err
	}
	return &Milestone{ID: id, ProjectID: projectID, Title: title, DueDate: due.UTC()}, nil
}

// CompleteMilestone marks a milestone done.
func (db *DB) CompleteMilestone(id int64) error {
	var projectID int64
	if err := db.conn.QueryRow("SELECT project_id FROM milestones WHERE id = ?", id).Scan(&projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if _, err := db.conn.Exec(
		"UPDATE milestones SET done = true, completed_at = ? WHERE id = ?",
		db.stamp(), id,
	); err != nil {
		return err
	}
	return db.touchProject(projectID)
}

// ListMilestones returns a project's milestones ordered by due date.
func (db *DB) ListMilestones(projectID int64) ([]Milestone, error) {
	rows, err := db.conn.Query(
		"SELECT id, project_id, title, due_date, done, completed_at FROM milestones WHERE project_id = ? ORDER BY due_date, id",
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var milestones []Milestone
	for rows.Next() {
		var m Milestone
		var due string
		var completed sql.NullString
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Title, &due, &m.Done, &completed); err != nil {
			return nil, err
		}
		m.DueDate = parseTime(sql.NullString{String: due, Valid: true})
		m.CompletedAt = parseTime(completed)
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

// AddUpdate posts a progress update to the client portal.
func (db *DB) AddUpdate(projectID int64, body string) (*Update, error) {
	if body == "" {
		return nil, errors.New("update body is required")
	}
	now := db.now().UTC().Truncate(time.Second)
	result, err := db.conn.Exec(
		"INSERT INTO project_updates (project_id, body, created_at) VALUES (?, ?, ?)",
		projectID, body, formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting update: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := db.touchProject(projectID); err != nil {
		return nil, err
	}
	return &Update{ID: id, ProjectID: projectID, Body: body, CreatedAt: now}, nil
}

// ListUpdates returns a project's updates, newest first, at most limit
// rows (all when limit <= 0).
func (db *DB) ListUpdates(projectID int64, limit int) ([]Update, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(
		"SELECT id, project_id, body, created_at FROM project_updates WHERE project_id = ? ORDER BY id DESC LIMIT ?",
		projectID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var updates []Update
	for rows.Next() {
		var u Update
		var created string
		if err := rows.Scan(&u.ID, &u.ProjectID, &u.Body, &created); err != nil {
			return nil, err
		}
		u.CreatedAt = parseTime(sql.NullString{String: created, Valid: true})
		updates = append(updates, u)
	}
	return updates, rows.Err()
}
