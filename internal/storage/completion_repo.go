package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type CompletionRepo struct {
	db *sql.DB
}

func NewCompletionRepo(db *sql.DB) *CompletionRepo {
	return &CompletionRepo{db: db}
}

// SetProgress records progress for one (habit, day). Writes are last-write-wins
// upserts at per-day granularity; a zero progress removes the row so history
// only ever holds positive entries.
func (r *CompletionRepo) SetProgress(ctx context.Context, habitID, day string, progress int) error {
	if progress <= 0 {
		_, err := r.db.ExecContext(ctx, `DELETE FROM completions WHERE habit_id = ? AND day = ?`, habitID, day)
		if err != nil {
			return fmt.Errorf("progress clear: %w", err)
		}
		return nil
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO completions (habit_id, day, progress, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(habit_id, day) DO UPDATE SET
			progress = excluded.progress,
			updated_at = excluded.updated_at
	`, habitID, day, progress, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("progress upsert: %w", err)
	}
	return nil
}

func (r *CompletionRepo) GetProgress(ctx context.Context, habitID, day string) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT progress FROM completions WHERE habit_id = ? AND day = ?`, habitID, day)
	var progress int
	if err := row.Scan(&progress); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("progress get: %w", err)
	}
	return progress, nil
}
