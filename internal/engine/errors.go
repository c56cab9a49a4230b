package engine

import "fmt"

// InvariantError reports a persisted derived value that disagrees with its
// recomputation. It signals a programming error; production code self-heals
// by forcing a recompute instead of trusting the stored value.
type InvariantError struct {
	Identity string
	Stored   int
	Derived  int
}

func (e InvariantError) Error() string {
	return fmt.Sprintf("xp invariant violated for %s: stored %d, derived %d", e.Identity, e.Stored, e.Derived)
}

// IdentitySwitchError wraps a failure while switching identities. The service
// falls back to an empty guest state rather than risk leaking the previous
// identity's data.
type IdentitySwitchError struct {
	Identity string
	Err      error
}

func (e IdentitySwitchError) Error() string {
	return fmt.Sprintf("switch to identity %q failed: %v", e.Identity, e.Err)
}

func (e IdentitySwitchError) Unwrap() error { return e.Err }
