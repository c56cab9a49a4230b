package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS habits (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			habit_type TEXT NOT NULL DEFAULT 'build',

			schedule_kind TEXT NOT NULL,
			schedule_weekday INTEGER,
			schedule_weekdays TEXT,
			schedule_every INTEGER,
			schedule_count INTEGER,

			start_date DATETIME NOT NULL,
			end_date DATETIME,

			goal_amount INTEGER NOT NULL DEFAULT 1,
			goal_unit TEXT NOT NULL DEFAULT 'count',
			goal_period TEXT NOT NULL DEFAULT 'day',

			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		// One row per (habit, day); progress writes are last-write-wins upserts.
		`CREATE TABLE IF NOT EXISTS completions (
			habit_id TEXT NOT NULL,
			day TEXT NOT NULL,
			progress INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (habit_id, day),
			FOREIGN KEY(habit_id) REFERENCES habits(id)
		);`,
		`CREATE TABLE IF NOT EXISTS xp_state (
			identity TEXT PRIMARY KEY,
			total_xp INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 1,
			daily_xp INTEGER NOT NULL DEFAULT 0,
			xp_for_current_level INTEGER NOT NULL DEFAULT 0,
			xp_for_next_level INTEGER NOT NULL DEFAULT 100,
			last_updated DATETIME
		);`,
		// Display-only audit trail, pruned to the newest 10 per identity.
		`CREATE TABLE IF NOT EXISTS xp_ledger (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			identity TEXT NOT NULL,
			amount INTEGER NOT NULL,
			reason TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_completions_habit_id ON completions(habit_id);`,
		`CREATE INDEX IF NOT EXISTS idx_xp_ledger_identity_id ON xp_ledger(identity, id);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
