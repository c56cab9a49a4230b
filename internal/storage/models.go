package storage

import "time"

// XPState is the persisted per-identity record. TotalXP and Level are derived
// values; the engine recomputes them from completion history and this row is
// only a cache of the latest derivation.
type XPState struct {
	Identity          string
	TotalXP           int
	Level             int
	DailyXP           int
	XPForCurrentLevel int
	XPForNextLevel    int
	LastUpdated       time.Time
}

// XPEntry is one ledger line. The ledger is display-only and never summed to
// produce TotalXP.
type XPEntry struct {
	ID        int64
	Identity  string
	Amount    int
	Reason    string
	CreatedAt time.Time
}
