package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/halfmoon-studio/studiodesk/internal/health"
)

const projectColumns = `id, name, client, status, start_date, deadline, blocked_tasks,
	portal_token, last_activity_at, created_at, updated_at`

// CreateProject inserts p, filling its ID, portal token and timestamps.
// A project starts with its creation time as its last activity.
func (db *DB) CreateProject(p *Project) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("project name is required")
	}
	if p.Status == "" {
		p.Status = health.StatusPlanning
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("unknown project status %q", p.Status)
	}
	if p.PortalToken == "" {
		p.PortalToken = uuid.NewString()
	}

	now := db.now().UTC().Truncate(time.Second)
	p.CreatedAt, p.UpdatedAt = now, now
	if p.LastActivityAt.IsZero() {
		p.LastActivityAt = now
	}

	result, err := db.conn.Exec(
		`INSERT INTO projects
		(name, client, status, start_date, deadline, blocked_tasks, portal_token,
		 last_activity_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Client, string(p.Status), nullTime(p.StartDate), nullTime(p.Deadline),
		p.BlockedTasks, p.PortalToken, nullTime(p.LastActivityAt),
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting project %q: %w", p.Name, err)
	}
	p.ID, err = result.LastInsertId()
	return err
}

// GetProject returns the project with the given ID.
func (db *DB) GetProject(id int64) (*Project, error) {
	row := db.conn.QueryRow("SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	return scanProject(row)
}

// GetProjectByName returns the project with the given name.
func (db *DB) GetProjectByName(name string) (*Project, error) {
	row := db.conn.QueryRow("SELECT "+projectColumns+" FROM projects WHERE name = ?", name)
	return scanProject(row)
}

// GetProjectByToken returns the project a client portal token belongs to.
func (db *DB) GetProjectByToken(token string) (*Project, error) {
	row := db.conn.QueryRow("SELECT "+projectColumns+" FROM projects WHERE portal_token = ?", token)
	return scanProject(row)
}

// ListProjects returns projects matching f, ordered by name.
func (db *DB) ListProjects(f ProjectFilter) ([]Project, error) {
	query := "SELECT " + projectColumns + " FROM projects WHERE 1=1"
	var args []any
	if f.Status != "" {
		query += " AND status = ?"
		args = append(args, string(f.Status))
	}
	if f.Client != "" {
		query += " AND client = ?"
		args = append(args, f.Client)
	}
	query += " ORDER BY name"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// UpdateProject writes every editable field of p and bumps its activity.
func (db *DB) UpdateProject(p *Project) error {
	if !p.Status.IsValid() {
		return fmt.Errorf("unknown project status %q", p.Status)
	}
	now := db.now().UTC().Truncate(time.Second)
	result, err := db.conn.Exec(
		`UPDATE projects SET name = ?, client = ?, status = ?, start_date = ?, deadline = ?,
		 blocked_tasks = ?, last_activity_at = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Client, string(p.Status), nullTime(p.StartDate), nullTime(p.Deadline),
		p.BlockedTasks, formatTime(now), formatTime(now), p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project %d: %w", p.ID, err)
	}
	if err := expectOneRow(result); err != nil {
		return err
	}
	p.UpdatedAt, p.LastActivityAt = now, now
	return nil
}

// DeleteProject removes a project and everything attached to it.
func (db *DB) DeleteProject(id int64) error {
	result, err := db.conn.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// touchProject records activity on a project.
func (db *DB) touchProject(id int64) error {
	result, err := db.conn.Exec(
		"UPDATE projects SET last_activity_at = ? WHERE id = ?",
		db.stamp(), id,
	)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*Project, error) {
	var p Project
	var status string
	var start, deadline, lastActivity sql.NullString
	var created, updated string
	err := row.Scan(&p.ID, &p.Name, &p.Client, &status, &start, &deadline,
		&p.BlockedTasks, &p.PortalToken, &lastActivity, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Status = health.Status(status)
	p.StartDate = parseTime(start)
	p.Deadline = parseTime(deadline)
	p.LastActivityAt = parseTime(lastActivity)
	p.CreatedAt = parseTime(sql.NullString{String: created, Valid: true})
	p.UpdatedAt = parseTime(sql.NullString{String: updated, Valid: true})
	return &p, nil
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
