package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/icebob/kantab-sub001/internal/token"
)

type verifyRequest struct {
	Token string `json:"token" binding:"required"`
}

// Verify is the RPC-style action the request-routing layer calls to
// authenticate inbound API requests. Repeated verification of the same
// token is served from the verification cache.
func (h *Handler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	claims, err := h.tokens.Verify(req.Token)
	if err != nil {
		status := http.StatusUnauthorized
		msg := "invalid token"
		if errors.Is(err, token.ErrTokenExpired) {
			msg = "token expired"
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	resp := gin.H{
		"subject": claims.Subject,
		"roles":   claims.Roles,
		"extra":   claims.Extra,
	}
	if claims.IssuedAt != nil {
		resp["issued_at"] = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		resp["expires_at"] = claims.ExpiresAt.Unix()
	}

	c.JSON(http.StatusOK, resp)
}
