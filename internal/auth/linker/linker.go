// Package linker maps external credentials to internal principals. It is
// the only place where identity-to-account mapping is decided; the account
// store remains the source of truth and the linker persists nothing.
package linker

import (
	"context"
	"fmt"

	"github.com/icebob/kantab-sub001/internal/accounts"
	"github.com/icebob/kantab-sub001/internal/auth"
)

type Linker struct {
	store accounts.Store
}

func New(store accounts.Store) *Linker {
	return &Linker{store: store}
}

// SignInProfile resolves a normalized social profile to a principal,
// creating or linking the account as needed.
func (l *Linker) SignInProfile(ctx context.Context, profile auth.Profile) (auth.Principal, error) {
	if profile.ExternalID == "" {
		return auth.Principal{}, fmt.Errorf("linker: profile has no external id")
	}

	account, err := l.store.FindOrCreateByProfile(ctx, profile)
	if err != nil {
		return auth.Principal{}, err
	}

	return principal(account), nil
}

// SignInPassword authenticates a password credential. Store errors
// (ErrNotFound, ErrWrongPassword, ErrPasswordLoginDisabled) propagate
// unchanged so the caller can map them to user-visible failures.
func (l *Linker) SignInPassword(ctx context.Context, email, password string) (auth.Principal, error) {
	account, err := l.store.VerifyPassword(ctx, email, password)
	if err != nil {
		return auth.Principal{}, err
	}

	return principal(account), nil
}

func principal(account *accounts.Account) auth.Principal {
	return auth.Principal{
		UserID: account.ID,
		Roles:  account.Roles,
	}
}
