package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/icebob/kantab-sub001/internal/access"
	"github.com/icebob/kantab-sub001/internal/auth"
	"github.com/icebob/kantab-sub001/internal/middleware"
)

type authzRequest struct {
	// opaque secure ids; board takes precedence over list when both
	// are present, matching the resolution fallback order
	Board string `json:"board"`
	List  string `json:"list"`

	// "owner" or "member" (default)
	Require string `json:"require"`
}

// AuthzCheck runs the permission predicates for the calling principal
// against a board, or a list that belongs to a board. The gateway maps
// allowed=false to 403; unresolvable targets deny rather than error.
func (h *Handler) AuthzCheck(c *gin.Context) {
	principal, _ := middleware.PrincipalFromContext(c.Request.Context())

	var req authzRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ref, err := h.resolveRef(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return
	}

	allowed, err := h.checkRef(c, principal, ref, req.Require)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "authorization lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"allowed": allowed})
}

func (h *Handler) resolveRef(req authzRequest) (access.Ref, error) {
	switch {
	case req.Board != "":
		id, err := h.codec.Decode(req.Board)
		if err != nil {
			return access.Ref{}, err
		}
		return access.BoardRef(id), nil

	case req.List != "":
		id, err := h.codec.Decode(req.List)
		if err != nil {
			return access.Ref{}, err
		}
		return access.ListRef(id), nil

	default:
		// no reference at all resolves to deny, not to an error
		return access.Ref{}, nil
	}
}

func (h *Handler) checkRef(c *gin.Context, p auth.Principal, ref access.Ref, require string) (bool, error) {
	ctx := c.Request.Context()
	if require == "owner" {
		return h.checker.IsOwner(ctx, p, ref)
	}
	return h.checker.IsMember(ctx, p, ref)
}
