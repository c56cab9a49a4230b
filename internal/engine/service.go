package engine

import (
	"context"
	"database/sql"
	"sync"

	"go.uber.org/zap"

	"habitline/internal/storage"
)

// Service is the single mutation owner for one identity's habits and XP.
// Reads fan out freely against the snapshots it hands out; every mutation path
// (progress writes, schedule edits, identity switches) is serialized here so
// rapid toggles cannot race and each write triggers exactly one recompute.
type Service struct {
	db          *sql.DB
	habits      *storage.HabitRepo
	completions *storage.CompletionRepo
	states      *storage.XPStateRepo
	ledger      *storage.XPLedgerRepo
	settings    *storage.SettingsRepo
	provider    *SettingsIdentityProvider
	bus         *Bus
	log         *zap.Logger

	mu             sync.Mutex
	identity       string
	xp             *XPEngine
	identityCtx    context.Context
	identityCancel context.CancelFunc
}

func NewService(db *sql.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	settings := storage.NewSettingsRepo(db)
	return &Service{
		db:          db,
		habits:      storage.NewHabitRepo(db),
		completions: storage.NewCompletionRepo(db),
		states:      storage.NewXPStateRepo(db),
		ledger:      storage.NewXPLedgerRepo(db),
		settings:    settings,
		provider:    NewSettingsIdentityProvider(settings),
		bus:         NewBus(),
		log:         log,
	}
}

func (s *Service) Bus() *Bus                          { return s.bus }
func (s *Service) HabitRepo() *storage.HabitRepo      { return s.habits }
func (s *Service) LedgerRepo() *storage.XPLedgerRepo  { return s.ledger }
func (s *Service) Provider() *SettingsIdentityProvider { return s.provider }

func (s *Service) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// XP returns the engine for the currently loaded identity.
func (s *Service) XP() *XPEngine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.xp
}

// Start resolves the current identity and loads its state.
func (s *Service) Start(ctx context.Context) error {
	identity, err := s.provider.CurrentIdentity(ctx)
	if err != nil {
		s.log.Warn("identity resolution failed, using guest", zap.Error(err))
		identity = GuestIdentity
	}
	return s.SwitchIdentity(ctx, identity)
}

// SwitchIdentity clears all in-memory state belonging to the previous identity
// before the new identity's state begins loading; the two never mix. In-flight
// work scoped to the old identity is cancelled first. On load failure the
// service falls back to an empty guest state and reports IdentitySwitchError.
func (s *Service) SwitchIdentity(ctx context.Context, identity string) error {
	if identity == "" {
		identity = GuestIdentity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identityCancel != nil {
		s.identityCancel()
	}
	if s.xp != nil {
		s.xp.Clear()
	}
	s.identity = ""
	s.xp = nil

	// The identity context outlives the switch call; it scopes recomputes
	// until the next switch cancels it.
	s.identityCtx, s.identityCancel = context.WithCancel(context.Background())

	if err := s.migrateLegacy(ctx, identity); err != nil {
		s.log.Warn("legacy xp migration failed", zap.String("identity", identity), zap.Error(err))
	}

	eng := NewXPEngine(identity, s.states, s.ledger, s.bus, s.log)
	if err := eng.Load(ctx); err != nil {
		serr := IdentitySwitchError{Identity: identity, Err: err}
		s.log.Error("identity switch failed, falling back to guest", zap.Error(serr))
		s.identity = GuestIdentity
		s.xp = NewXPEngine(GuestIdentity, s.states, s.ledger, s.bus, s.log)
		return serr
	}

	s.identity = identity
	s.xp = eng
	return nil
}

// migrateLegacy re-keys the shared legacy XP record to the resolved identity
// (or the guest bucket) exactly once; the settings flag prevents re-running.
func (s *Service) migrateLegacy(ctx context.Context, identity string) error {
	const migratedKey = "legacy_xp_migrated"

	done, err := s.settings.Get(ctx, migratedKey)
	if err != nil {
		return err
	}
	if done != "" {
		return nil
	}
	if err := s.states.ReKey(ctx, storage.LegacyIdentity, identity); err != nil {
		return err
	}
	return s.settings.Set(ctx, migratedKey, "1")
}
