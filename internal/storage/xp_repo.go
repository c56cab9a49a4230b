package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// LegacyIdentity is the shared bucket older versions keyed all XP state to.
// Migration re-keys it to the resolved identity exactly once.
const LegacyIdentity = "main_user"

// LedgerLimit caps the display-only XP ledger per identity.
const LedgerLimit = 10

type XPStateRepo struct {
	db *sql.DB
}

func NewXPStateRepo(db *sql.DB) *XPStateRepo {
	return &XPStateRepo{db: db}
}

func (r *XPStateRepo) Get(ctx context.Context, identity string) (*XPState, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT identity, total_xp, level, daily_xp, xp_for_current_level, xp_for_next_level, last_updated
		FROM xp_state
		WHERE identity = ?
	`, identity)

	var s XPState
	var lastUpdated sql.NullTime
	if err := row.Scan(&s.Identity, &s.TotalXP, &s.Level, &s.DailyXP, &s.XPForCurrentLevel, &s.XPForNextLevel, &lastUpdated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("xp state get: %w", err)
	}
	if lastUpdated.Valid {
		s.LastUpdated = lastUpdated.Time
	}
	return &s, nil
}

func (r *XPStateRepo) Upsert(ctx context.Context, s *XPState) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO xp_state (identity, total_xp, level, daily_xp, xp_for_current_level, xp_for_next_level, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(identity) DO UPDATE SET
			total_xp = excluded.total_xp,
			level = excluded.level,
			daily_xp = excluded.daily_xp,
			xp_for_current_level = excluded.xp_for_current_level,
			xp_for_next_level = excluded.xp_for_next_level,
			last_updated = excluded.last_updated
	`, s.Identity, s.TotalXP, s.Level, s.DailyXP, s.XPForCurrentLevel, s.XPForNextLevel, s.LastUpdated)
	if err != nil {
		return fmt.Errorf("xp state upsert: %w", err)
	}
	return nil
}

// ReKey moves a persisted record from one identity key to another. It is a
// no-op when the source is missing, and refuses to clobber an existing target.
func (r *XPStateRepo) ReKey(ctx context.Context, from, to string) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM xp_state WHERE identity = ?`, to).Scan(&one)
		if err == nil {
			return nil // target exists, keep it
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("xp state rekey check: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE xp_state SET identity = ? WHERE identity = ?`, to, from); err != nil {
			return fmt.Errorf("xp state rekey: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE xp_ledger SET identity = ? WHERE identity = ?`, to, from); err != nil {
			return fmt.Errorf("xp ledger rekey: %w", err)
		}
		return nil
	})
}

type XPLedgerRepo struct {
	db *sql.DB
}

func NewXPLedgerRepo(db *sql.DB) *XPLedgerRepo {
	return &XPLedgerRepo{db: db}
}

// Append records one ledger line and prunes the identity's ledger back down to
// LedgerLimit entries.
func (r *XPLedgerRepo) Append(ctx context.Context, identity string, amount int, reason string) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO xp_ledger (identity, amount, reason, created_at)
			VALUES (?, ?, ?, ?)
		`, identity, amount, reason, time.Now().UTC()); err != nil {
			return fmt.Errorf("ledger insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM xp_ledger
			WHERE identity = ? AND id NOT IN (
				SELECT id FROM xp_ledger WHERE identity = ? ORDER BY id DESC LIMIT ?
			)
		`, identity, identity, LedgerLimit); err != nil {
			return fmt.Errorf("ledger prune: %w", err)
		}
		return nil
	})
}

// List returns the newest entries first, at most LedgerLimit.
func (r *XPLedgerRepo) List(ctx context.Context, identity string) ([]XPEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, identity, amount, reason, created_at
		FROM xp_ledger
		WHERE identity = ?
		ORDER BY id DESC
		LIMIT ?
	`, identity, LedgerLimit)
	if err != nil {
		return nil, fmt.Errorf("ledger list: %w", err)
	}
	defer rows.Close()

	var out []XPEntry
	for rows.Next() {
		var e XPEntry
		if err := rows.Scan(&e.ID, &e.Identity, &e.Amount, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("ledger scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger rows: %w", err)
	}
	return out, nil
}
