package handlers

import (
	"net/http"

	"pvp_escrow/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListGames(c *gin.Context) {
	games, err := h.Matches.ListGames(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load registry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

type SetGameActiveRequest struct {
	Active bool `json:"active"`
}

// SetGameActive toggles a registry entry; the service rejects callers other
// than the registry authority.
func (h *Handler) SetGameActive(c *gin.Context) {
	playerKey, ok := getPlayerKey(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	var req SetGameActiveRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	kind := domain.GameKind(c.Param("kind"))
	if err := h.Matches.SetGameActive(c.Request.Context(), playerKey, kind, req.Active); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "active": req.Active})
}

// RecentAudit exposes the cross-match audit trail to the registry authority.
func (h *Handler) RecentAudit(c *gin.Context) {
	playerKey, ok := getPlayerKey(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	logs, err := h.Matches.RecentAudit(c.Request.Context(), playerKey, 100)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit": logs})
}
