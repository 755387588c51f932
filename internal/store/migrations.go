package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates all initial tables and indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			name             TEXT NOT NULL UNIQUE,
			client           TEXT NOT NULL DEFAULT '',
			status           TEXT NOT NULL,
			start_date       TEXT,
			deadline         TEXT,
			blocked_tasks    INTEGER NOT NULL DEFAULT 0,
			portal_token     TEXT NOT NULL UNIQUE,
			last_activity_at TEXT,
			created_at       TEXT NOT NULL,
			updated_at       TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS requirements (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			title      TEXT NOT NULL,
			done       BOOLEAN NOT NULL DEFAULT false,
			created_at TEXT NOT NULL,
			done_at    TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS milestones (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id   INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			title        TEXT NOT NULL,
			due_date     TEXT NOT NULL,
			done         BOOLEAN NOT NULL DEFAULT false,
			completed_at TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS project_updates (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			body       TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS health_snapshots (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id  INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			computed_at TEXT NOT NULL,
			health      TEXT NOT NULL,
			score       INTEGER NOT NULL,
			reasons     TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS leads (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			ref        TEXT NOT NULL UNIQUE,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL,
			company    TEXT,
			phone      TEXT,
			website    TEXT,
			source     TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'NEW',
			budget     REAL NOT NULL DEFAULT 0,
			message    TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,

		// Indexes.
		`CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status)`,
		`CREATE INDEX IF NOT EXISTS idx_requirements_project ON requirements(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_milestones_project ON milestones(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_updates_project ON project_updates(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_health_project ON health_snapshots(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
