package sqlite

import (
	"context"
	"fmt"
)

// migration is one named schema change, applied exactly once in order.
type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "0001_workflows",
		sql: `CREATE TABLE IF NOT EXISTS obscopilot_workflows (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			version    INTEGER NOT NULL DEFAULT 1,
			enabled    INTEGER NOT NULL DEFAULT 1,
			definition BLOB NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	},
	{
		name: "0002_runs",
		sql: `CREATE TABLE IF NOT EXISTS obscopilot_runs (
			id                  TEXT PRIMARY KEY,
			workflow_id         TEXT NOT NULL,
			workflow_name       TEXT NOT NULL,
			status              TEXT NOT NULL,
			trigger_index       INTEGER NOT NULL DEFAULT 0,
			event_id            TEXT NOT NULL,
			event_kind          TEXT NOT NULL,
			failed_action_index INTEGER NOT NULL DEFAULT -1,
			error               TEXT NOT NULL DEFAULT '',
			started_at          TIMESTAMP NOT NULL,
			completed_at        TIMESTAMP,
			duration            INTEGER NOT NULL DEFAULT 0
		)`,
	},
	{
		name: "0003_run_indexes",
		sql: `CREATE INDEX IF NOT EXISTS idx_obscopilot_runs_workflow
			ON obscopilot_runs (workflow_id, started_at DESC)`,
	},
	{
		name: "0004_run_status_index",
		sql: `CREATE INDEX IF NOT EXISTS idx_obscopilot_runs_status
			ON obscopilot_runs (status, started_at DESC)`,
	},
}

// Migrate applies pending migrations in order, tracking applied ones in
// a dedicated table so re-running is safe.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS obscopilot_migrations (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("obscopilot/sqlite: create migrations table: %w", err)
	}

	for _, m := range migrations {
		var applied bool
		err = s.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM obscopilot_migrations WHERE name = ?)`,
			m.name,
		).Scan(&applied)
		if err != nil {
			return fmt.Errorf("obscopilot/sqlite: check migration %s: %w", m.name, err)
		}
		if applied {
			continue
		}

		if _, execErr := s.db.ExecContext(ctx, m.sql); execErr != nil {
			return fmt.Errorf("obscopilot/sqlite: execute migration %s: %w", m.name, execErr)
		}

		if _, recErr := s.db.ExecContext(ctx,
			`INSERT INTO obscopilot_migrations (name) VALUES (?)`,
			m.name,
		); recErr != nil {
			return fmt.Errorf("obscopilot/sqlite: record migration %s: %w", m.name, recErr)
		}

		s.logger.Info("applied migration", "name", m.name)
	}

	return nil
}
