package storage

import (
	"fmt"
)

// migration represents a single database migration.
type migration struct {
	version int
	name    string
	up      func() error
}

// runMigrations executes database schema migrations in order.
func (s *SQLiteStorage) runMigrations() error {
	if !s.enabled || s.db == nil {
		return nil
	}

	if err := s.createMigrationsTable(); err != nil {
		return err
	}

	version, err := s.getCurrentMigrationVersion()
	if err != nil {
		return err
	}

	migrations := []migration{
		{version: 1, name: "profiles_and_activity", up: s.migration001ProfilesAndActivity},
		{version: 2, name: "reviews", up: s.migration002Reviews},
		{version: 3, name: "playbooks", up: s.migration003Playbooks},
	}

	for _, m := range migrations {
		if version < m.version {
			s.logger.Info().Int("version", m.version).Str("name", m.name).Msg("running migration")
			if err := m.up(); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
			if err := s.setMigrationVersion(m.version, m.name); err != nil {
				return err
			}
		}
	}

	return nil
}

// createMigrationsTable creates the schema_migrations table.
func (s *SQLiteStorage) createMigrationsTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	return err
}

// getCurrentMigrationVersion returns the highest applied migration version.
func (s *SQLiteStorage) getCurrentMigrationVersion() (int, error) {
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")

	var version int
	if err := row.Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

// setMigrationVersion records a migration as applied.
func (s *SQLiteStorage) setMigrationVersion(version int, name string) error {
	_, err := s.db.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", version, name)
	return err
}

// execAll runs DDL statements in order, stopping at the first failure.
func (s *SQLiteStorage) execAll(stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// migration001ProfilesAndActivity creates profiles and the activity log.
func (s *SQLiteStorage) migration001ProfilesAndActivity() error {
	if err := s.execAll(`
		CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY,
			organisation_type TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			ai_experience_level TEXT NOT NULL DEFAULT '',
			budget TEXT NOT NULL DEFAULT '',
			risk_level TEXT NOT NULL DEFAULT '',
			data_sensitivity TEXT NOT NULL DEFAULT '',
			deployment_pref TEXT NOT NULL DEFAULT '',
			use_cases TEXT NOT NULL DEFAULT ''
		)
	`); err != nil {
		return fmt.Errorf("failed to create profiles table: %w", err)
	}

	if err := s.execAll(`
		CREATE TABLE IF NOT EXISTS user_activity (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			activity_type TEXT NOT NULL,
			query TEXT NOT NULL DEFAULT '',
			details TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL
		)
	`, `
		CREATE INDEX IF NOT EXISTS idx_user_activity_user_time
		ON user_activity(user_id, created_at DESC)
	`, `
		CREATE INDEX IF NOT EXISTS idx_user_activity_type
		ON user_activity(user_id, activity_type, created_at DESC)
	`); err != nil {
		return fmt.Errorf("failed to create user_activity table: %w", err)
	}

	return nil
}

// migration002Reviews creates reviews and helpful votes.
func (s *SQLiteStorage) migration002Reviews() error {
	if err := s.execAll(`
		CREATE TABLE IF NOT EXISTS tool_reviews (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			tool_slug TEXT NOT NULL,
			rating INTEGER NOT NULL CHECK (rating >= 1 AND rating <= 5),
			comment TEXT NOT NULL DEFAULT '',
			use_case_tag TEXT NOT NULL DEFAULT '',
			is_hidden INTEGER NOT NULL DEFAULT 0,
			hidden_reason TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			UNIQUE (user_id, tool_slug)
		)
	`, `
		CREATE INDEX IF NOT EXISTS idx_tool_reviews_tool
		ON tool_reviews(tool_slug)
	`, `
		CREATE INDEX IF NOT EXISTS idx_tool_reviews_user
		ON tool_reviews(user_id)
	`); err != nil {
		return fmt.Errorf("failed to create tool_reviews table: %w", err)
	}

	if err := s.execAll(`
		CREATE TABLE IF NOT EXISTS review_votes (
			review_id TEXT NOT NULL REFERENCES tool_reviews(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			is_helpful INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (review_id, user_id)
		)
	`); err != nil {
		return fmt.Errorf("failed to create review_votes table: %w", err)
	}

	return nil
}

// migration003Playbooks creates the playbooks table.
func (s *SQLiteStorage) migration003Playbooks() error {
	if err := s.execAll(`
		CREATE TABLE IF NOT EXISTS tool_playbooks (
			tool_slug TEXT PRIMARY KEY,
			status TEXT NOT NULL DEFAULT 'draft',
			best_use_cases TEXT NOT NULL DEFAULT '',
			implementation_steps TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create tool_playbooks table: %w", err)
	}
	return nil
}
