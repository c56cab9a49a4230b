package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"habitline/internal/habit"
)

type HabitRepo struct {
	db *sql.DB
}

func NewHabitRepo(db *sql.DB) *HabitRepo {
	return &HabitRepo{db: db}
}

func (r *HabitRepo) Insert(ctx context.Context, h *habit.Habit) error {
	weekdaysJSON, err := encodeWeekdays(h.Schedule.Weekdays)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO habits (
			id, name, habit_type,
			schedule_kind, schedule_weekday, schedule_weekdays, schedule_every, schedule_count,
			start_date, end_date,
			goal_amount, goal_unit, goal_period
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, h.ID, h.Name, string(h.Type),
		string(h.Schedule.Kind), nullableInt(int(h.Schedule.Weekday)), weekdaysJSON,
		nullableInt(h.Schedule.Every), nullableInt(h.Schedule.Count),
		h.StartDate, h.EndDate,
		h.Goal.Amount, h.Goal.Unit, string(h.Goal.Period))
	if err != nil {
		return fmt.Errorf("habit insert: %w", err)
	}
	return nil
}

func (r *HabitRepo) Get(ctx context.Context, id string) (*habit.Habit, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, habit_type,
			schedule_kind, schedule_weekday, schedule_weekdays, schedule_every, schedule_count,
			start_date, end_date, goal_amount, goal_unit, goal_period
		FROM habits
		WHERE id = ?
	`, id)

	h, err := scanHabitRow(row)
	if err != nil || h == nil {
		return h, err
	}

	history, err := r.loadHistory(ctx, h.ID)
	if err != nil {
		return nil, err
	}
	h.History = history
	return h, nil
}

// List returns ordered habit snapshots with completion history attached.
func (r *HabitRepo) List(ctx context.Context) ([]habit.Habit, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, habit_type,
			schedule_kind, schedule_weekday, schedule_weekdays, schedule_every, schedule_count,
			start_date, end_date, goal_amount, goal_unit, goal_period
		FROM habits
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("habit list: %w", err)
	}
	defer rows.Close()

	var out []habit.Habit
	for rows.Next() {
		h, err := scanHabitRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("habit list rows: %w", err)
	}

	histories, err := r.loadAllHistories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range out {
		hist := histories[out[i].ID]
		if hist == nil {
			hist = map[string]int{}
		}
		out[i].History = hist
	}
	return out, nil
}

// Find resolves a CLI reference: exact id, unique id prefix, or exact name.
func (r *HabitRepo) Find(ctx context.Context, ref string) (*habit.Habit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("habit reference is required")
	}

	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	var match *habit.Habit
	for i := range all {
		h := &all[i]
		if h.ID == ref || strings.EqualFold(h.Name, ref) {
			return h, nil
		}
		if strings.HasPrefix(h.ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("habit reference %q is ambiguous", ref)
			}
			match = h
		}
	}
	if match == nil {
		return nil, fmt.Errorf("habit %q not found", ref)
	}
	return match, nil
}

// ReplaceSchedule swaps the whole schedule value; schedules are never patched
// in place.
func (r *HabitRepo) ReplaceSchedule(ctx context.Context, id string, s habit.Schedule) error {
	weekdaysJSON, err := encodeWeekdays(s.Weekdays)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE habits
		SET schedule_kind = ?, schedule_weekday = ?, schedule_weekdays = ?, schedule_every = ?, schedule_count = ?
		WHERE id = ?
	`, string(s.Kind), nullableInt(int(s.Weekday)), weekdaysJSON, nullableInt(s.Every), nullableInt(s.Count), id)
	if err != nil {
		return fmt.Errorf("habit replace schedule: %w", err)
	}
	return nil
}

// Delete removes the habit and cascades its completion history in one
// transaction.
func (r *HabitRepo) Delete(ctx context.Context, id string) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM completions WHERE habit_id = ?`, id); err != nil {
			return fmt.Errorf("habit delete completions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id); err != nil {
			return fmt.Errorf("habit delete: %w", err)
		}
		return nil
	})
}

func (r *HabitRepo) loadHistory(ctx context.Context, habitID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT day, progress FROM completions WHERE habit_id = ?`, habitID)
	if err != nil {
		return nil, fmt.Errorf("history load: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var day string
		var progress int
		if err := rows.Scan(&day, &progress); err != nil {
			return nil, fmt.Errorf("history scan: %w", err)
		}
		out[day] = progress
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history rows: %w", err)
	}
	return out, nil
}

func (r *HabitRepo) loadAllHistories(ctx context.Context) (map[string]map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT habit_id, day, progress FROM completions`)
	if err != nil {
		return nil, fmt.Errorf("histories load: %w", err)
	}
	defer rows.Close()

	out := map[string]map[string]int{}
	for rows.Next() {
		var habitID, day string
		var progress int
		if err := rows.Scan(&habitID, &day, &progress); err != nil {
			return nil, fmt.Errorf("histories scan: %w", err)
		}
		if out[habitID] == nil {
			out[habitID] = map[string]int{}
		}
		out[habitID][day] = progress
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("histories rows: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHabitRow(row scanner) (*habit.Habit, error) {
	var (
		id, name, habitType string
		kind                string
		weekday             sql.NullInt64
		weekdaysRaw         sql.NullString
		every               sql.NullInt64
		count               sql.NullInt64
		startDate           time.Time
		endDate             sql.NullTime
		goalAmount          int
		goalUnit            string
		goalPeriod          string
	)

	if err := row.Scan(
		&id, &name, &habitType,
		&kind, &weekday, &weekdaysRaw, &every, &count,
		&startDate, &endDate, &goalAmount, &goalUnit, &goalPeriod,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("habit scan: %w", err)
	}

	var end *time.Time
	if endDate.Valid {
		v := endDate.Time
		end = &v
	}

	var weekdays []habit.Weekday
	if weekdaysRaw.Valid && weekdaysRaw.String != "" {
		if err := json.Unmarshal([]byte(weekdaysRaw.String), &weekdays); err != nil {
			return nil, fmt.Errorf("unmarshal weekdays: %w", err)
		}
	}

	return &habit.Habit{
		ID:   id,
		Name: name,
		Type: habit.Type(habitType),
		Schedule: habit.Schedule{
			Kind:     habit.ScheduleKind(kind),
			Weekday:  habit.Weekday(weekday.Int64),
			Weekdays: weekdays,
			Every:    int(every.Int64),
			Count:    int(count.Int64),
		},
		StartDate: startDate,
		EndDate:   end,
		Goal: habit.Goal{
			Amount: goalAmount,
			Unit:   goalUnit,
			Period: habit.GoalPeriod(goalPeriod),
		},
	}, nil
}

func encodeWeekdays(ws []habit.Weekday) (*string, error) {
	if len(ws) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(ws)
	if err != nil {
		return nil, fmt.Errorf("marshal weekdays: %w", err)
	}
	s := string(data)
	return &s, nil
}

func nullableInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
