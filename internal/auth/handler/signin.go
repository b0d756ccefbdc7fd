package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/icebob/kantab-sub001/internal/accounts"
	"github.com/icebob/kantab-sub001/internal/logger"
)

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignIn authenticates a password credential and issues the same bearer
// token as the social flow.
func (h *Handler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	principal, err := h.linker.SignInPassword(
		c.Request.Context(),
		req.Email,
		req.Password,
	)

	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		case errors.Is(err, accounts.ErrWrongPassword):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong password"})
		case errors.Is(err, accounts.ErrPasswordLoginDisabled):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "password login disabled for this account"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "sign in failed"})
		}
		return
	}

	signed, err := h.issueToken(principal.UserID, principal.Roles)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}

	logger.Info("password login succeeded", map[string]any{
		"user_id": principal.UserID,
		"ip":      c.ClientIP(),
	})

	c.JSON(http.StatusOK, gin.H{
		"status": "authenticated",
		"token":  signed,
	})
}
