package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/icebob/kantab-sub001/internal/auth"
	"github.com/icebob/kantab-sub001/internal/token"
)

// unexported, collision-proof context key
type principalContextKeyType struct{}

var principalKey = principalContextKeyType{}

// PrincipalFromContext extracts the authenticated principal from context.
func PrincipalFromContext(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey).(auth.Principal)
	return p, ok
}

// WithPrincipal attaches a principal to a context. Exposed for tests.
func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

type AuthMiddleware struct {
	Tokens *token.Service
}

func NewAuthMiddleware(tokens *token.Service) *AuthMiddleware {
	return &AuthMiddleware{Tokens: tokens}
}

// RequireAuth verifies the bearer token and attaches the principal to the
// request context. Verification itself is cached by the token service.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := a.principal(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// OptionalAuth attaches a principal when a valid bearer token is present
// and continues anonymously otherwise. Permission predicates deny
// anonymous principals on their own.
func (a *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := a.principal(r); ok {
			r = r.WithContext(WithPrincipal(r.Context(), p))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *AuthMiddleware) principal(r *http.Request) (auth.Principal, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.Principal{}, false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return auth.Principal{}, false
	}

	claims, err := a.Tokens.Verify(parts[1])
	if err != nil {
		return auth.Principal{}, false
	}

	return auth.Principal{
		UserID:       claims.Subject,
		Roles:        claims.Roles,
		Impersonator: claims.Impersonator,
	}, true
}
