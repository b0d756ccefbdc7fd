package accounts

import (
	"context"
	"errors"

	"github.com/icebob/kantab-sub001/internal/auth"
)

var (
	ErrNotFound = errors.New("accounts: account not found")

	ErrWrongPassword = errors.New("accounts: wrong password")

	// ErrPasswordLoginDisabled is returned for accounts created through a
	// social provider that never set a password.
	ErrPasswordLoginDisabled = errors.New("accounts: password login disabled for passwordless account")
)

// Account is the internal user record behind a principal.
type Account struct {
	ID        string // uuid
	Email     string
	FullName  string
	AvatarURL string
	Roles     []string
}

// Store is the account collaborator consumed by the identity linker.
// The Postgres implementation is the canonical one; the in-memory
// implementation backs tests and single-binary development.
type Store interface {
	// FindOrCreateByProfile resolves a normalized external profile to an
	// account: existing identity first, then email linking, then creation.
	FindOrCreateByProfile(ctx context.Context, profile auth.Profile) (*Account, error)

	// VerifyPassword authenticates a password credential. It distinguishes
	// unknown accounts, wrong passwords, and passwordless accounts.
	VerifyPassword(ctx context.Context, email, password string) (*Account, error)
}
