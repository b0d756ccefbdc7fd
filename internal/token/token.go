package token

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("token: invalid token")
	ErrTokenExpired = errors.New("token: token expired")

	// ErrGeneration marks transient signing failures; callers may retry.
	ErrGeneration = errors.New("token: generation failed")
)

// Claims is the payload embedded in an issued bearer token.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`

	// Impersonator marks operational-tooling tokens that bypass
	// ownership checks. Set only by admin issuance paths.
	Impersonator bool `json:"impersonator,omitempty"`

	Extra map[string]any `json:"extra,omitempty"`
}

// Service issues and verifies HS256-signed bearer tokens. Successful
// verifications are cached by token hash so repeated checks of the same
// still-valid token skip the signature work.
type Service struct {
	secret     []byte
	defaultTTL time.Duration
	cache      Cache
	now        func() time.Time
}

func NewService(secret string, defaultTTL time.Duration, cache Cache) (*Service, error) {
	if secret == "" {
		return nil, errors.New("token: secret is required")
	}
	if defaultTTL <= 0 {
		return nil, errors.New("token: default ttl must be positive")
	}
	return &Service{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
		cache:      cache,
		now:        time.Now,
	}, nil
}

// Issue signs claims for the given subject. A non-positive ttl uses the
// service default. ExpiresAt is always strictly after IssuedAt.
func (s *Service) Issue(subject string, ttl time.Duration, claims Claims) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrGeneration)
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := s.now().UTC()
	claims.Subject = subject
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded claims.
// A cache hit still honors the claims' own expiry; entries past the
// cache TTL are evicted lazily by the cache itself.
func (s *Service) Verify(raw string) (*Claims, error) {
	key := hashToken(raw)

	if claims, ok := s.cache.Get(key); ok {
		if claims.ExpiresAt != nil && !s.now().Before(claims.ExpiresAt.Time) {
			return nil, ErrTokenExpired
		}
		return claims, nil
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	// Racing writers for the same token all derive from the same
	// signature check, so last write wins is safe.
	s.cache.Set(key, &claims)

	return &claims, nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
