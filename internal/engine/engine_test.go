package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"habitline/internal/habit"
	"habitline/internal/storage"
)

func newTestService(t *testing.T) (*Service, func()) {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	db, err := storage.Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	svc := NewService(db, zap.NewNop())
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start service: %v", err)
	}
	cleanup := func() {
		_ = db.Close()
	}
	return svc, cleanup
}

func TestLevelCurve(t *testing.T) {
	if got := Level(0); got != 1 {
		t.Fatalf("Level(0)=%d, want 1", got)
	}
	if got := Level(LevelBase); got != 2 {
		t.Fatalf("Level(%d)=%d, want 2", LevelBase, got)
	}
	if got := Level(4 * LevelBase); got != 3 {
		t.Fatalf("Level(%d)=%d, want 3", 4*LevelBase, got)
	}

	prev := 0
	for xp := 0; xp <= 10_000; xp += 7 {
		l := Level(xp)
		if l < 1 {
			t.Fatalf("Level(%d)=%d, want >= 1", xp, l)
		}
		if l < prev {
			t.Fatalf("Level not monotonic: Level(%d)=%d after %d", xp, l, prev)
		}
		prev = l
	}

	for l := 2; l <= 20; l++ {
		threshold := XPForLevel(l)
		if got := Level(threshold); got != l {
			t.Fatalf("Level(XPForLevel(%d))=%d, want %d", l, got, l)
		}
		if got := Level(threshold - 1); got != l-1 {
			t.Fatalf("Level(XPForLevel(%d)-1)=%d, want %d", l, got, l-1)
		}
	}
}

func TestPublishXPIdempotent(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	eng := svc.XP()
	eng.PublishXP(ctx, 10)

	first := eng.Snapshot()
	if first.TotalXP != 10*DailyCompletionXP {
		t.Fatalf("TotalXP=%d, want %d", first.TotalXP, 10*DailyCompletionXP)
	}

	entries, err := svc.LedgerRepo().List(ctx, eng.Identity())
	if err != nil {
		t.Fatalf("ledger list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ledger entries=%d, want 1", len(entries))
	}

	// Republishing the same count must change nothing, including the ledger.
	eng.PublishXP(ctx, 10)
	second := eng.Snapshot()
	if second.TotalXP != first.TotalXP || second.Level != first.Level {
		t.Fatalf("state changed on idempotent publish: %+v vs %+v", second, first)
	}
	entries, err = svc.LedgerRepo().List(ctx, eng.Identity())
	if err != nil {
		t.Fatalf("ledger list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ledger entries after republish=%d, want 1", len(entries))
	}
}

func TestPublishXPInvariant(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	eng := svc.XP()
	counts := []int{1, 5, 5, 3, 12, 0, 7}
	for _, c := range counts {
		eng.PublishXP(ctx, c)
		if got := eng.TotalXP(); got != c*DailyCompletionXP {
			t.Fatalf("after PublishXP(%d): TotalXP=%d, want %d", c, got, c*DailyCompletionXP)
		}
		if got := eng.CurrentLevel(); got != Level(c*DailyCompletionXP) {
			t.Fatalf("after PublishXP(%d): Level=%d, want %d", c, got, Level(c*DailyCompletionXP))
		}
		cur, next := eng.LevelBounds()
		if cur != XPForLevel(eng.CurrentLevel()) || next != XPForLevel(eng.CurrentLevel()+1) {
			t.Fatalf("level bounds [%d,%d) inconsistent with level %d", cur, next, eng.CurrentLevel())
		}
	}
}

func TestLevelUpEmitsNotificationOnly(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	var levelUps []Event
	svc.Bus().Subscribe(EventLevelUp, func(ev Event) {
		levelUps = append(levelUps, ev)
	})

	eng := svc.XP()
	eng.PublishXP(ctx, 1) // 50 XP, still level 1
	if len(levelUps) != 0 {
		t.Fatalf("unexpected level-up at level 1")
	}

	eng.PublishXP(ctx, 2) // 100 XP, level 2
	if len(levelUps) != 1 {
		t.Fatalf("level-up events=%d, want 1", len(levelUps))
	}
	if levelUps[0].Level != 2 {
		t.Fatalf("level-up level=%d, want 2", levelUps[0].Level)
	}
	// The notification must not have awarded bonus XP.
	if got := eng.TotalXP(); got != 2*DailyCompletionXP {
		t.Fatalf("TotalXP after level-up=%d, want %d", got, 2*DailyCompletionXP)
	}

	eng.PublishXP(ctx, 3) // 150 XP, still level 2
	if len(levelUps) != 1 {
		t.Fatalf("level-up events=%d after same-level publish, want 1", len(levelUps))
	}
}

func TestIdentitySwitchRoundTrip(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	if err := svc.SwitchIdentity(ctx, "alice"); err != nil {
		t.Fatalf("switch to alice: %v", err)
	}
	svc.XP().PublishXP(ctx, 10)
	if got := svc.XP().TotalXP(); got != 500 {
		t.Fatalf("alice TotalXP=%d, want 500", got)
	}

	if err := svc.SwitchIdentity(ctx, GuestIdentity); err != nil {
		t.Fatalf("switch to guest: %v", err)
	}
	if got := svc.XP().TotalXP(); got != 0 {
		t.Fatalf("guest TotalXP=%d, want 0", got)
	}
	if got := svc.XP().CurrentLevel(); got != 1 {
		t.Fatalf("guest Level=%d, want 1", got)
	}

	if err := svc.SwitchIdentity(ctx, "alice"); err != nil {
		t.Fatalf("switch back to alice: %v", err)
	}
	if got := svc.XP().TotalXP(); got != 500 {
		t.Fatalf("alice TotalXP after round trip=%d, want 500", got)
	}
}

func TestLegacyMigrationRunsOnce(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	db, err := storage.Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	// Seed a legacy shared record before any service touches the DB.
	states := storage.NewXPStateRepo(db)
	legacy := &storage.XPState{
		Identity: storage.LegacyIdentity,
		TotalXP:  300,
		Level:    Level(300),
	}
	if err := states.Upsert(ctx, legacy); err != nil {
		t.Fatalf("seed legacy state: %v", err)
	}

	svc := NewService(db, zap.NewNop())
	if err := svc.Provider().SetCurrentIdentity(ctx, "alice"); err != nil {
		t.Fatalf("set profile: %v", err)
	}
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := svc.XP().TotalXP(); got != 300 {
		t.Fatalf("migrated TotalXP=%d, want 300", got)
	}

	// A second legacy record must not be migrated again.
	if err := states.Upsert(ctx, &storage.XPState{Identity: storage.LegacyIdentity, TotalXP: 999, Level: 5}); err != nil {
		t.Fatalf("seed second legacy state: %v", err)
	}
	if err := svc.SwitchIdentity(ctx, "bob"); err != nil {
		t.Fatalf("switch to bob: %v", err)
	}
	if got := svc.XP().TotalXP(); got != 0 {
		t.Fatalf("bob TotalXP=%d, want 0 (migration must not re-run)", got)
	}
}

func TestToggleCompleteDrivesXP(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	h, err := svc.CreateHabit(ctx, CreateHabitInput{
		Name:     "Meditate",
		Schedule: habit.Daily(),
	})
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}

	today := time.Now().UTC()
	res, err := svc.ToggleComplete(ctx, h.ID, today)
	if err != nil {
		t.Fatalf("toggle complete: %v", err)
	}
	if !res.GoalMet {
		t.Fatalf("expected goal met after toggle")
	}
	if res.TotalXP != DailyCompletionXP {
		t.Fatalf("TotalXP=%d, want %d", res.TotalXP, DailyCompletionXP)
	}

	// Toggling back undoes the completed day; XP is recomputed, never
	// decremented.
	res, err = svc.ToggleComplete(ctx, h.ID, today)
	if err != nil {
		t.Fatalf("toggle undo: %v", err)
	}
	if res.GoalMet {
		t.Fatalf("expected goal not met after undo")
	}
	if res.TotalXP != 0 {
		t.Fatalf("TotalXP after undo=%d, want 0", res.TotalXP)
	}
}

func TestCompletedDays(t *testing.T) {
	today := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)

	a := habit.Habit{
		ID: "a", Name: "a", Type: habit.TypeBuild,
		Schedule: habit.Daily(), StartDate: start,
		Goal:    habit.Goal{Amount: 1},
		History: map[string]int{"2026-03-08": 1, "2026-03-09": 1},
	}
	b := habit.Habit{
		ID: "b", Name: "b", Type: habit.TypeBuild,
		Schedule: habit.Daily(), StartDate: start,
		Goal:    habit.Goal{Amount: 2},
		History: map[string]int{"2026-03-08": 2, "2026-03-09": 1},
	}

	// 03-08: both at goal. 03-09: b below goal. 03-10: nothing recorded.
	if got := CompletedDays([]habit.Habit{a, b}, today); got != 1 {
		t.Fatalf("CompletedDays=%d, want 1", got)
	}
	if got := CompletedDays(nil, today); got != 0 {
		t.Fatalf("CompletedDays(nil)=%d, want 0", got)
	}
}

func TestLedgerStaysBounded(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	eng := svc.XP()
	for c := 1; c <= 15; c++ {
		eng.PublishXP(ctx, c)
	}

	entries, err := svc.LedgerRepo().List(ctx, eng.Identity())
	if err != nil {
		t.Fatalf("ledger list: %v", err)
	}
	if len(entries) != storage.LedgerLimit {
		t.Fatalf("ledger entries=%d, want %d", len(entries), storage.LedgerLimit)
	}
	// Newest first.
	if entries[0].ID < entries[len(entries)-1].ID {
		t.Fatalf("ledger not ordered newest first")
	}
}

func TestPersistFailureKeepsMemoryAuthoritative(t *testing.T) {
	svc, cleanup := newTestService(t)
	ctx := context.Background()

	eng := svc.XP()
	eng.PublishXP(ctx, 2)

	// Kill the DB out from under the engine; the derivation must still land
	// in memory.
	cleanup()
	eng.PublishXP(ctx, 4)
	if got := eng.TotalXP(); got != 4*DailyCompletionXP {
		t.Fatalf("TotalXP after persist failure=%d, want %d", got, 4*DailyCompletionXP)
	}
	if got := eng.CurrentLevel(); got != Level(4*DailyCompletionXP) {
		t.Fatalf("Level after persist failure=%d, want %d", got, Level(4*DailyCompletionXP))
	}
}
