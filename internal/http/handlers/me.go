package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Me(c *gin.Context) {
	playerKey, ok := getPlayerKey(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	asset := c.Query("asset")
	balance, err := h.Ledger.GetBalance(c.Request.Context(), playerKey, asset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load balance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player_key": playerKey,
		"balance":    balance,
	})
}

type DepositRequest struct {
	Amount int64  `json:"amount"`
	Asset  string `json:"asset"`
}

func (h *Handler) Deposit(c *gin.Context) {
	playerKey, ok := getPlayerKey(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	var req DepositRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	balance, err := h.Ledger.Deposit(c.Request.Context(), playerKey, req.Asset, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

func (h *Handler) MyMatches(c *gin.Context) {
	playerKey, ok := getPlayerKey(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	limit := 50
	matches, err := h.Matches.ListByPlayer(c.Request.Context(), playerKey, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load matches"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches})
}
