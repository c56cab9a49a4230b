package engine

import (
	"context"

	"habitline/internal/storage"
)

// GuestIdentity is the bucket used when no profile is signed in, and the safe
// fallback when an identity switch fails.
const GuestIdentity = "guest"

const profileKey = "profile"

// IdentityProvider resolves the identity owning habits and XP state. The
// mechanics of authentication live behind this interface; the engine only
// consumes the resolved id.
type IdentityProvider interface {
	CurrentIdentity(ctx context.Context) (string, error)
}

// SettingsIdentityProvider reads the active profile from the settings table.
// An unset profile resolves to the guest bucket.
type SettingsIdentityProvider struct {
	settings *storage.SettingsRepo
}

func NewSettingsIdentityProvider(settings *storage.SettingsRepo) *SettingsIdentityProvider {
	return &SettingsIdentityProvider{settings: settings}
}

func (p *SettingsIdentityProvider) CurrentIdentity(ctx context.Context) (string, error) {
	v, err := p.settings.Get(ctx, profileKey)
	if err != nil {
		return "", err
	}
	if v == "" {
		return GuestIdentity, nil
	}
	return v, nil
}

// SetCurrentIdentity persists the active profile name.
func (p *SettingsIdentityProvider) SetCurrentIdentity(ctx context.Context, identity string) error {
	return p.settings.Set(ctx, profileKey, identity)
}
