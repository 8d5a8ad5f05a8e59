package database

import "fmt"

// createTableStatements defines the durable analytics schema: the bounded
// event buffer and experiment definitions.
var createTableStatements = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		session_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		category TEXT NOT NULL,
		action TEXT,
		label TEXT,
		value REAL,
		metadata TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_created_at ON events (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_events_session ON events (session_id)`,
	`CREATE TABLE IF NOT EXISTS ab_tests (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		goal TEXT,
		variants TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
}

// EnsureSchema creates the analytics tables when missing.
func (db *DB) EnsureSchema() error {
	for _, stmt := range createTableStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
