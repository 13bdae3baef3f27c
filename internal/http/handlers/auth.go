package handlers

import (
	"net/http"

	"pvp_escrow/internal/game"
	"pvp_escrow/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthRequest struct {
	PlayerKey string `json:"player_key"`
}

// Auth registers the player key and issues a session token. Key ownership
// proofs (signatures) are a deployment concern layered in front of this
// service; the engine only needs a stable identity.
func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if _, err := game.PlayerKeyBytes(req.PlayerKey); err != nil {
		respondError(c, err)
		return
	}

	if err := h.Ledger.Register(c.Request.Context(), req.PlayerKey); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register player"})
		return
	}

	token, err := service.GenerateJWT(req.PlayerKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"player_key": req.PlayerKey,
	})
}
