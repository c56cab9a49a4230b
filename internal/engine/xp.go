package engine

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"habitline/internal/storage"
)

const (
	// DailyCompletionXP is awarded per fully-completed day. Total XP is always
	// completedDays * DailyCompletionXP; nothing else may mutate it.
	DailyCompletionXP = 50

	// LevelBase is the quadratic level curve constant:
	// level(xp) = floor(sqrt(xp / LevelBase)) + 1.
	LevelBase = 100
)

// Level returns the level for a total XP value. Monotonic non-decreasing,
// minimum 1.
func Level(totalXP int) int {
	if totalXP <= 0 {
		return 1
	}
	return int(math.Sqrt(float64(totalXP)/LevelBase)) + 1
}

// XPForLevel returns the total XP threshold at which level begins.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	d := level - 1
	return LevelBase * d * d
}

// XPEngine derives XP and level for one identity. All state is a pure function
// of the completed-days count supplied through PublishXP; the engine never
// increments, it only recomputes. One engine exists per identity, built by the
// service when that identity loads.
type XPEngine struct {
	identity string
	states   *storage.XPStateRepo
	ledger   *storage.XPLedgerRepo
	bus      *Bus
	log      *zap.Logger

	mu     sync.Mutex
	state  storage.XPState
	loaded bool
	// dirty marks a derivation that could not be persisted; the in-memory
	// value stays authoritative and the write is retried on the next publish.
	dirty bool
}

func NewXPEngine(identity string, states *storage.XPStateRepo, ledger *storage.XPLedgerRepo, bus *Bus, log *zap.Logger) *XPEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &XPEngine{
		identity: identity,
		states:   states,
		ledger:   ledger,
		bus:      bus,
		log:      log,
		state:    emptyState(identity),
	}
}

func emptyState(identity string) storage.XPState {
	return storage.XPState{
		Identity:       identity,
		Level:          1,
		XPForNextLevel: XPForLevel(2),
	}
}

func (e *XPEngine) Identity() string { return e.identity }

// Load reads the persisted record for this identity. A missing record yields a
// fresh empty state. DailyXP is session-scoped and starts at zero regardless
// of what was persisted.
func (e *XPEngine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	persisted, err := e.states.Get(ctx, e.identity)
	if err != nil {
		return err
	}
	if persisted == nil {
		e.state = emptyState(e.identity)
	} else {
		e.state = *persisted
		e.state.DailyXP = 0

		// A level that disagrees with its derived value is a programming
		// error somewhere upstream; self-heal instead of trusting the row.
		if derived := Level(e.state.TotalXP); e.state.Level != derived {
			e.log.Error("xp level diverged from derived value, self-healing",
				zap.String("identity", e.identity),
				zap.Int("stored", e.state.Level),
				zap.Int("derived", derived),
			)
			e.state.Level = derived
			e.state.XPForCurrentLevel = XPForLevel(derived)
			e.state.XPForNextLevel = XPForLevel(derived + 1)
			e.dirty = true
		}
	}
	e.loaded = true
	return nil
}

// PublishXP derives total XP from the completed-days count and persists the
// result. Idempotent: republishing the same count is a no-op. Persistence
// failures are soft; the freshly-derived in-memory state stays authoritative
// and the write is retried on the next publish.
func (e *XPEngine) PublishXP(ctx context.Context, completedDays int) {
	if completedDays < 0 {
		completedDays = 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	newXP := completedDays * DailyCompletionXP
	if newXP == e.state.TotalXP && !e.dirty {
		return
	}

	delta := newXP - e.state.TotalXP
	levelBefore := e.state.Level

	e.state.TotalXP = newXP
	e.state.Level = Level(newXP)
	e.state.XPForCurrentLevel = XPForLevel(e.state.Level)
	e.state.XPForNextLevel = XPForLevel(e.state.Level + 1)
	if delta > 0 {
		e.state.DailyXP += delta
	}
	e.state.LastUpdated = time.Now().UTC()

	if err := e.states.Upsert(ctx, &e.state); err != nil {
		e.dirty = true
		e.log.Warn("xp state persist failed, keeping in-memory value",
			zap.String("identity", e.identity), zap.Error(err))
	} else {
		e.dirty = false
	}

	if delta != 0 {
		if err := e.ledger.Append(ctx, e.identity, delta, "daily completion recompute"); err != nil {
			e.log.Warn("xp ledger append failed",
				zap.String("identity", e.identity), zap.Error(err))
		}
	}

	if e.bus != nil && delta != 0 {
		e.bus.Publish(Event{
			Type:     EventXPChanged,
			Identity: e.identity,
			TotalXP:  e.state.TotalXP,
			Level:    e.state.Level,
		})
		// Leveling up is a notification only. It never awards bonus XP;
		// any XP mutation outside the derivation above breaks the invariant.
		if e.state.Level > levelBefore {
			e.bus.Publish(Event{
				Type:     EventLevelUp,
				Identity: e.identity,
				TotalXP:  e.state.TotalXP,
				Level:    e.state.Level,
			})
		}
	}
}

// Snapshot returns a copy of the current derived state.
func (e *XPEngine) Snapshot() storage.XPState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *XPEngine) TotalXP() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.TotalXP
}

func (e *XPEngine) CurrentLevel() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Level
}

// LevelBounds returns the XP range of the current level for progress bars.
func (e *XPEngine) LevelBounds() (current, next int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.XPForCurrentLevel, e.state.XPForNextLevel
}

// Clear drops all in-memory state. Called on sign-out before another
// identity's engine loads; persisted records are untouched.
func (e *XPEngine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = emptyState(e.identity)
	e.loaded = false
	e.dirty = false
}
