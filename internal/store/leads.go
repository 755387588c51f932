package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const leadColumns = `id, ref, name, email, company, phone, website, source, status,
	budget, message, created_at, updated_at`

// CreateLead inserts l as a NEW lead, filling its ID, reference and
// timestamps.
func (db *DB) CreateLead(l *Lead) error {
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("lead name is required")
	}
	if !strings.Contains(l.Email, "@") {
		return fmt.Errorf("invalid email address %q", l.Email)
	}
	if l.Source == "" {
		l.Source = SourceContact
	}
	if _, err := ParseLeadSource(string(l.Source)); err != nil {
		return err
	}
	if l.Status == "" {
		l.Status = LeadNew
	}
	if l.Ref == "" {
		l.Ref = uuid.NewString()
	}
	now := db.now().UTC().Truncate(time.Second)
	l.CreatedAt, l.UpdatedAt = now, now

	result, err := db.conn.Exec(
		`INSERT INTO leads
		(ref, name, email, company, phone, website, source, status, budget, message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.Ref, l.Name, l.Email, l.Company, l.Phone, l.Website, string(l.Source),
		string(l.Status), l.Budget, l.Message, formatTime(now), formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("inserting lead: %w", err)
	}
	l.ID, err = result.LastInsertId()
	return err
}

// GetLead returns the lead with the given ID.
func (db *DB) GetLead(id int64) (*Lead, error) {
	row := db.conn.QueryRow("SELECT "+leadColumns+" FROM leads WHERE id = ?", id)
	return scanLead(row)
}

// ListLeads returns leads newest first. An empty status returns every lead.
func (db *DB) ListLeads(status LeadStatus) ([]Lead, error) {
	query := "SELECT " + leadColumns + " FROM leads"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY id DESC"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var leads []Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, rows.Err()
}

// UpdateLeadStatus moves a lead to a new pipeline stage.
func (db *DB) UpdateLeadStatus(id int64, status LeadStatus) error {
	if _, err := ParseLeadStatus(string(status)); err != nil {
		return err
	}
	result, err := db.conn.Exec(
		"UPDATE leads SET status = ?, updated_at = ? WHERE id = ?",
		string(status), db.stamp(), id,
	)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// DeleteLead removes a lead.
func (db *DB) DeleteLead(id int64) error {
	result, err := db.conn.Exec("DELETE FROM leads WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func scanLead(row rowScanner) (*Lead, error) {
	var l Lead
	var company, phone, website, message sql.NullString
	var source, status, created, updated string
	err := row.Scan(&l.ID, &l.Ref, &l.Name, &l.Email, &company, &phone, &website,
		&source, &status, &l.Budget, &message, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	l.Company = company.String
	l.Phone = phone.String
	l.Website = website.String
	l.Message = message.String
	l.Source = LeadSource(source)
	l.Status = LeadStatus(status)
	l.CreatedAt = parseTime(sql.NullString{String: created, Valid: true})
	l.UpdatedAt = parseTime(sql.NullString{String: updated, Valid: true})
	return &l, nil
}
