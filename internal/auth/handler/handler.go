package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/icebob/kantab-sub001/internal/access"
	"github.com/icebob/kantab-sub001/internal/auth/linker"
	"github.com/icebob/kantab-sub001/internal/auth/provider"
	"github.com/icebob/kantab-sub001/internal/logger"
	"github.com/icebob/kantab-sub001/internal/secureid"
	"github.com/icebob/kantab-sub001/internal/token"
)

// issueAttempts bounds retries on transient signing failures.
const issueAttempts = 3

type Handler struct {
	providers *provider.Registry
	linker    *linker.Linker
	tokens    *token.Service
	codec     *secureid.Codec
	checker   *access.Checker
	loginURL  string
}

func NewHandler(
	registry *provider.Registry,
	linker *linker.Linker,
	tokens *token.Service,
	codec *secureid.Codec,
	checker *access.Checker,
	loginURL string,
) *Handler {
	return &Handler{
		providers: registry,
		linker:    linker,
		tokens:    tokens,
		codec:     codec,
		checker:   checker,
		loginURL:  loginURL,
	}
}

// RegisterRoutes wires the public auth surface. The authz check route is
// registered separately behind the auth middleware by the caller.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/auth/:provider", h.login)
	r.GET("/auth/:provider/callback", h.callback)
	r.POST("/auth/signin", h.SignIn)
	r.POST("/auth/verify", h.Verify)
}

// login starts the redirect leg of the handshake. Unknown and disabled
// providers are indistinguishable to the client: both 404.
func (h *Handler) login(c *gin.Context) {
	providerName := c.Param("provider")

	strategy, _, ok := h.providers.Load(providerName)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "unknown or disabled provider",
		})
		return
	}

	state := generateState(c)
	_, codeChallenge := generatePKCE(c)

	c.Redirect(http.StatusFound, strategy.AuthCodeURL(state, codeChallenge))
}

// callback completes the handshake: exchange the code, normalize the
// profile, link the account, issue a token. Any failure sends the user
// back to the login surface with an error indicator, never a hung request.
func (h *Handler) callback(c *gin.Context) {
	providerName := c.Param("provider")

	strategy, desc, ok := h.providers.Load(providerName)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "unknown or disabled provider",
		})
		return
	}

	if !validateState(c) {
		h.loginRedirect(c, "state")
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oauth callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		h.loginRedirect(c, errParam)
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("oauth callback missing code and error", map[string]any{
			"provider": providerName,
		})
		h.loginRedirect(c, "missing_code")
		return
	}

	codeVerifier := getPKCEVerifier(c)
	if codeVerifier == "" {
		h.loginRedirect(c, "missing_pkce")
		return
	}

	raw, err := strategy.Exchange(c.Request.Context(), code, codeVerifier)
	if err != nil {
		logger.Warn("oauth exchange failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		h.loginRedirect(c, "exchange_failed")
		return
	}

	profile, err := desc.Normalize(raw)
	if err != nil {
		logger.Warn("profile normalization failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		h.loginRedirect(c, "profile")
		return
	}

	principal, err := h.linker.SignInProfile(c.Request.Context(), profile)
	if err != nil {
		logger.Error("identity linking failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		h.loginRedirect(c, "link_failed")
		return
	}

	signed, err := h.issueToken(principal.UserID, principal.Roles)
	if err != nil {
		logger.Error("token issuance failed", map[string]any{
			"error": err.Error(),
		})
		h.loginRedirect(c, "token")
		return
	}

	logger.Info("login succeeded", map[string]any{
		"provider": providerName,
		"user_id":  principal.UserID,
		"ip":       c.ClientIP(),
	})

	c.JSON(http.StatusOK, gin.H{
		"status": "authenticated",
		"token":  signed,
	})
}

func (h *Handler) issueToken(userID string, roles []string) (string, error) {
	var signed string
	var err error
	for i := 0; i < issueAttempts; i++ {
		signed, err = h.tokens.Issue(userID, 0, token.Claims{Roles: roles})
		if err == nil {
			return signed, nil
		}
	}
	return "", err
}

func (h *Handler) loginRedirect(c *gin.Context, reason string) {
	c.Redirect(http.StatusFound, h.loginURL+"?error="+url.QueryEscape(reason))
}
