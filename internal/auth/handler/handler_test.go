package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icebob/kantab-sub001/internal/access"
	"github.com/icebob/kantab-sub001/internal/accounts"
	"github.com/icebob/kantab-sub001/internal/auth"
	"github.com/icebob/kantab-sub001/internal/auth/linker"
	"github.com/icebob/kantab-sub001/internal/auth/provider"
	"github.com/icebob/kantab-sub001/internal/middleware"
	"github.com/icebob/kantab-sub001/internal/secureid"
	"github.com/icebob/kantab-sub001/internal/token"
)

type stubStrategy struct {
	name string
	raw  auth.RawProfile
	err  error
}

func (s stubStrategy) Name() string { return s.name }

func (s stubStrategy) AuthCodeURL(state, challenge string) string {
	return "https://provider.example/authorize?state=" + state
}

func (s stubStrategy) Exchange(context.Context, string, string) (auth.RawProfile, error) {
	return s.raw, s.err
}

type stubFetcher struct {
	boards map[int64]*access.Board
	lists  map[int64]*access.List
}

func (f stubFetcher) Board(_ context.Context, id int64) (*access.Board, error) {
	if b, ok := f.boards[id]; ok {
		return b, nil
	}
	return nil, access.ErrNotFound
}

func (f stubFetcher) List(_ context.Context, id int64) (*access.List, error) {
	if l, ok := f.lists[id]; ok {
		return l, nil
	}
	return nil, access.ErrNotFound
}

type testEnv struct {
	router *gin.Engine
	store  *accounts.MemoryStore
	tokens *token.Service
	codec  *secureid.Codec
}

func newTestEnv(t *testing.T, strategies ...provider.Strategy) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := provider.NewRegistry()
	for _, s := range strategies {
		require.NoError(t, registry.Register(provider.Descriptor{
			Name:         s.Name(),
			DefaultScope: []string{"profile"},
			Normalize: func(raw auth.RawProfile) (auth.Profile, error) {
				sub := provider.StringField(raw, "sub")
				if sub == "" {
					return auth.Profile{}, provider.ErrProfileNormalization
				}
				return auth.Profile{
					Provider:   s.Name(),
					ExternalID: sub,
					FullName:   provider.StringField(raw, "name"),
					Email:      provider.StringField(raw, "email"),
				}, nil
			},
		}))
		require.NoError(t, registry.Enable(s))
	}

	tokens, err := token.NewService("test-secret", time.Hour, token.NewMemoryCache(time.Hour))
	require.NoError(t, err)

	codec, err := secureid.New("test-salt")
	require.NoError(t, err)

	store := accounts.NewMemoryStore()

	checker := access.NewChecker(stubFetcher{
		boards: map[int64]*access.Board{
			1: {ID: 1, OwnerID: "u1", Members: []string{"u1", "u2"}},
		},
		lists: map[int64]*access.List{
			10: {ID: 10, BoardID: 1},
		},
	})

	h := NewHandler(registry, linker.New(store), tokens, codec, checker, "/login")

	router := gin.New()
	h.RegisterRoutes(router)

	authMW := middleware.NewAuthMiddleware(tokens)
	authz := router.Group("/authz")
	authz.Use(middleware.GinRequireAuth(authMW))
	authz.POST("/check", h.AuthzCheck)

	return &testEnv{router: router, store: store, tokens: tokens, codec: codec}
}

func TestLogin_UnknownProvider(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogin_RedirectsToProvider(t *testing.T) {
	env := newTestEnv(t, stubStrategy{name: "google"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "https://provider.example/authorize")

	var names []string
	for _, cookie := range rec.Result().Cookies() {
		names = append(names, cookie.Name)
	}
	assert.Contains(t, names, stateCookieName)
	assert.Contains(t, names, pkceCookieName)
}

func callbackRequest(state string) *http.Request {
	req := httptest.NewRequest(http.MethodGet,
		"/auth/google/callback?state="+state+"&code=authcode", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "state-1"})
	req.AddCookie(&http.Cookie{Name: pkceCookieName, Value: "verifier-1"})
	return req
}

func TestCallback_IssuesToken(t *testing.T) {
	env := newTestEnv(t, stubStrategy{
		name: "google",
		raw:  auth.RawProfile{"sub": "ext-1", "name": "Ada", "email": "ada@example.com"},
	})

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, callbackRequest("state-1"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Status string `json:"status"`
		Token  string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "authenticated", body.Status)

	claims, err := env.tokens.Verify(body.Token)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.Subject)
}

func TestCallback_StateMismatchRedirects(t *testing.T) {
	env := newTestEnv(t, stubStrategy{name: "google"})

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, callbackRequest("wrong-state"))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/login?error=")
}

func TestCallback_UnnormalizableProfileRedirects(t *testing.T) {
	env := newTestEnv(t, stubStrategy{
		name: "google",
		raw:  auth.RawProfile{"name": "no sub here"},
	})

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, callbackRequest("state-1"))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "error=profile")
}

func TestSignIn(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.store.SeedPassword("ada@example.com", "correct-horse")
	require.NoError(t, err)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"ok", `{"email":"ada@example.com","password":"correct-horse"}`, http.StatusOK},
		{"wrong password", `{"email":"ada@example.com","password":"nope-nope"}`, http.StatusUnauthorized},
		{"unknown account", `{"email":"ghost@example.com","password":"whatever"}`, http.StatusUnauthorized},
		{"bad payload", `{"email":"ada@example.com"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			env.router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestVerifyEndpoint(t *testing.T) {
	env := newTestEnv(t)

	raw, err := env.tokens.Issue("u1", time.Minute, token.Claims{Roles: []string{"user"}})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/verify",
		strings.NewReader(fmt.Sprintf(`{"token":%q}`, raw)))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Subject string `json:"subject"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u1", body.Subject)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/verify",
		strings.NewReader(`{"token":"not.a.token"}`))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func (e *testEnv) authzCheck(t *testing.T, userID, body string) (int, bool) {
	t.Helper()

	raw, err := e.tokens.Issue(userID, time.Minute, token.Claims{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/authz/check", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+raw)
	e.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		return rec.Code, false
	}
	var resp struct {
		Allowed bool `json:"allowed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp.Allowed
}

func TestAuthzCheck(t *testing.T) {
	env := newTestEnv(t)

	boardID, err := env.codec.Encode(1)
	require.NoError(t, err)
	listID, err := env.codec.Encode(10)
	require.NoError(t, err)

	code, allowed := env.authzCheck(t, "u1",
		fmt.Sprintf(`{"board":%q,"require":"owner"}`, boardID))
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, allowed)

	code, allowed = env.authzCheck(t, "u2",
		fmt.Sprintf(`{"board":%q,"require":"owner"}`, boardID))
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, allowed)

	// membership through the list -> board hop
	code, allowed = env.authzCheck(t, "u2", fmt.Sprintf(`{"list":%q}`, listID))
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, allowed)

	// malformed opaque id
	code, _ = env.authzCheck(t, "u1", `{"board":"!!!"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	// no reference resolves to deny
	code, allowed = env.authzCheck(t, "u1", `{}`)
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, allowed)
}

func TestAuthzCheck_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/authz/check", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
