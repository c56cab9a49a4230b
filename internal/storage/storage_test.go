package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"habitline/internal/habit"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestHabitRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	habits := NewHabitRepo(db)
	completions := NewCompletionRepo(db)

	end := time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)
	in := &habit.Habit{
		ID:        "h-1",
		Name:      "Read",
		Type:      habit.TypeBuild,
		Schedule:  habit.OnDays(habit.Monday, habit.Thursday),
		StartDate: time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
		EndDate:   &end,
		Goal:      habit.Goal{Amount: 30, Unit: "pages", Period: habit.GoalPerDay},
	}
	if err := habits.Insert(ctx, in); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := completions.SetProgress(ctx, "h-1", "2026-01-05", 30); err != nil {
		t.Fatalf("set progress: %v", err)
	}

	got, err := habits.Get(ctx, "h-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatalf("habit not found")
	}
	if got.Schedule.Kind != habit.KindWeekdayList {
		t.Fatalf("schedule kind=%q, want weekday_list", got.Schedule.Kind)
	}
	if len(got.Schedule.Weekdays) != 2 || got.Schedule.Weekdays[0] != habit.Monday {
		t.Fatalf("weekdays=%v, want [monday thursday]", got.Schedule.Weekdays)
	}
	if got.EndDate == nil || !got.EndDate.Equal(end) {
		t.Fatalf("end date=%v, want %v", got.EndDate, end)
	}
	if got.History["2026-01-05"] != 30 {
		t.Fatalf("history=%v, want progress 30 on 2026-01-05", got.History)
	}

	missing, err := habits.Get(ctx, "nope")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing habit")
	}
}

func TestHabitFind(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	habits := NewHabitRepo(db)

	for _, h := range []habit.Habit{
		{ID: "aaa111", Name: "Run", Type: habit.TypeBuild, Schedule: habit.Daily(), StartDate: time.Now().UTC(), Goal: habit.Goal{Amount: 1}},
		{ID: "aab222", Name: "Swim", Type: habit.TypeBuild, Schedule: habit.Daily(), StartDate: time.Now().UTC(), Goal: habit.Goal{Amount: 1}},
	} {
		h := h
		if err := habits.Insert(ctx, &h); err != nil {
			t.Fatalf("insert %s: %v", h.ID, err)
		}
	}

	byName, err := habits.Find(ctx, "run")
	if err != nil {
		t.Fatalf("find by name: %v", err)
	}
	if byName.ID != "aaa111" {
		t.Fatalf("find by name got %s", byName.ID)
	}

	byPrefix, err := habits.Find(ctx, "aab")
	if err != nil {
		t.Fatalf("find by prefix: %v", err)
	}
	if byPrefix.ID != "aab222" {
		t.Fatalf("find by prefix got %s", byPrefix.ID)
	}

	if _, err := habits.Find(ctx, "aa"); err == nil {
		t.Fatalf("expected ambiguous prefix error")
	}
	if _, err := habits.Find(ctx, "zzz"); err == nil {
		t.Fatalf("expected not-found error")
	}
}

func TestDeleteCascadesHistory(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	habits := NewHabitRepo(db)
	completions := NewCompletionRepo(db)

	h := &habit.Habit{ID: "h-1", Name: "Run", Type: habit.TypeBuild, Schedule: habit.Daily(), StartDate: time.Now().UTC(), Goal: habit.Goal{Amount: 1}}
	if err := habits.Insert(ctx, h); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := completions.SetProgress(ctx, "h-1", "2026-01-05", 1); err != nil {
		t.Fatalf("set progress: %v", err)
	}

	if err := habits.Delete(ctx, "h-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM completions WHERE habit_id = 'h-1'`).Scan(&n); err != nil {
		t.Fatalf("count completions: %v", err)
	}
	if n != 0 {
		t.Fatalf("completions after delete=%d, want 0", n)
	}
}

func TestSetProgressLastWriteWins(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	completions := NewCompletionRepo(db)
	habits := NewHabitRepo(db)

	h := &habit.Habit{ID: "h-1", Name: "Water", Type: habit.TypeBuild, Schedule: habit.Daily(), StartDate: time.Now().UTC(), Goal: habit.Goal{Amount: 8}}
	if err := habits.Insert(ctx, h); err != nil {
		t.Fatalf("insert: %v", err)
	}

	for _, p := range []int{3, 5, 8} {
		if err := completions.SetProgress(ctx, "h-1", "2026-02-01", p); err != nil {
			t.Fatalf("set progress %d: %v", p, err)
		}
	}
	got, err := completions.GetProgress(ctx, "h-1", "2026-02-01")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if got != 8 {
		t.Fatalf("progress=%d, want 8", got)
	}

	// Zero clears the row entirely; history only holds positive entries.
	if err := completions.SetProgress(ctx, "h-1", "2026-02-01", 0); err != nil {
		t.Fatalf("clear progress: %v", err)
	}
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM completions WHERE habit_id = 'h-1'`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("rows after clear=%d, want 0", n)
	}
}

func TestReKeyRefusesToClobber(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	states := NewXPStateRepo(db)

	if err := states.Upsert(ctx, &XPState{Identity: LegacyIdentity, TotalXP: 100, Level: 2}); err != nil {
		t.Fatalf("seed legacy: %v", err)
	}
	if err := states.Upsert(ctx, &XPState{Identity: "alice", TotalXP: 500, Level: 3}); err != nil {
		t.Fatalf("seed alice: %v", err)
	}

	if err := states.ReKey(ctx, LegacyIdentity, "alice"); err != nil {
		t.Fatalf("rekey: %v", err)
	}
	got, err := states.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get alice: %v", err)
	}
	if got.TotalXP != 500 {
		t.Fatalf("alice TotalXP=%d, want 500 (existing record must win)", got.TotalXP)
	}
}
