package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/halfmoon-studio/studiodesk/internal/health"
)

// InsertHealthSnapshot records a scored result for a project.
func (db *DB) InsertHealthSnapshot(projectID int64, computedAt time.Time, r health.Result) (int64, error) {
	reasons := r.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	reasonsJSON, err := json.Marshal(reasons)
	if err != nil {
		return 0, err
	}
	result, err := db.conn.Exec(
		`INSERT INTO health_snapshots (project_id, computed_at, health, score, reasons)
		 VALUES (?, ?, ?, ?, ?)`,
		projectID, formatTime(computedAt), string(r.Health), r.Score, string(reasonsJSON),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListHealthSnapshots returns a project's recorded health, newest first.
// limit <= 0 returns every snapshot.
func (db *DB) ListHealthSnapshots(projectID int64, limit int) ([]HealthSnapshot, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(
		`SELECT id, project_id, computed_at, health, score, reasons
		 FROM health_snapshots WHERE project_id = ? ORDER BY id DESC LIMIT ?`,
		projectID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var snaps []HealthSnapshot
	for rows.Next() {
		s, err := scanHealthSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *s)
	}
	return snaps, rows.Err()
}

// LatestHealthSnapshot returns the most recent snapshot for a project.
func (db *DB) LatestHealthSnapshot(projectID int64) (*HealthSnapshot, error) {
	row := db.conn.QueryRow(
		`SELECT id, project_id, computed_at, health, score, reasons
		 FROM health_snapshots WHERE project_id = ? ORDER BY id DESC LIMIT 1`,
		projectID,
	)
	return scanHealthSnapshot(row)
}

func scanHealthSnapshot(row rowScanner) (*HealthSnapshot, error) {
	var s HealthSnapshot
	var computed, h, reasons string
	err := row.Scan(&s.ID, &s.ProjectID, &computed, &h, &s.Score, &reasons)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.ComputedAt = parseTime(sql.NullString{String: computed, Valid: true})
	s.Health = health.Health(h)
	if err := json.Unmarshal([]byte(reasons), &s.Reasons); err != nil {
		return nil, err
	}
	return &s, nil
}
