package provider

import (
	"context"
	"errors"

	"github.com/icebob/kantab-sub001/internal/auth"
)

var (
	// ErrDuplicate is returned when a descriptor name is registered twice.
	ErrDuplicate = errors.New("provider: already registered")

	// ErrProfileNormalization is returned by normalizers that cannot find
	// a usable identifier in the raw profile.
	ErrProfileNormalization = errors.New("provider: cannot normalize profile")
)

// Descriptor declares a provider to the registry: its name, the scopes it
// needs, and how its raw profile reduces to the canonical shape. It is
// immutable after registration.
type Descriptor struct {
	Name         string
	DefaultScope []string
	Normalize    func(auth.RawProfile) (auth.Profile, error)
}

// Strategy drives the provider's side of the OAuth handshake.
// Implementations return identity facts only and must not perform user
// creation, linking, or token issuance.
type Strategy interface {
	// Name returns the provider identifier (e.g. "google", "github").
	Name() string

	// AuthCodeURL returns the OAuth authorization URL.
	// State and PKCE parameters are provided by the caller.
	AuthCodeURL(state string, codeChallenge string) string

	// Exchange trades the authorization code for the provider's raw
	// profile. Normalization happens in the caller via the descriptor.
	Exchange(
		ctx context.Context,
		code string,
		codeVerifier string,
	) (auth.RawProfile, error)
}
