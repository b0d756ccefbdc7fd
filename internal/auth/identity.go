package auth

// RawProfile is the provider-specific payload returned by a strategy's
// exchange step, before normalization.
type RawProfile map[string]any

// Profile is the canonical shape every provider's raw profile is reduced
// to before it reaches the identity linker. It contains facts only, no
// decisions.
type Profile struct {
	Provider   string // e.g. "google", "github"
	ExternalID string // provider-scoped unique user identifier (sub)
	FullName   string
	Email      string // optional; not every provider discloses it
	AvatarURL  string // optional
}

// Principal is the authenticated identity attached to a request after a
// token has been verified. An empty UserID means anonymous.
type Principal struct {
	UserID string
	Roles  []string

	// Impersonator grants the operational-tooling bypass in permission
	// checks. It is only ever set from a verified token claim.
	Impersonator bool
}

func (p Principal) Anonymous() bool {
	return p.UserID == ""
}

func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
