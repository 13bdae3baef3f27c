package handlers

import (
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"pvp_escrow/internal/domain"
	"pvp_escrow/internal/service"

	"github.com/gin-gonic/gin"
)

// Binary fields (commitments, salts, moves) travel as hex strings.

type CreateMatchRequest struct {
	Kind           string  `json:"kind"`
	BetAmount      int64   `json:"bet_amount"`
	TokenMint      *string `json:"token_mint,omitempty"`
	FeeBps         int32   `json:"fee_bps"`
	Commitment     string  `json:"commitment,omitempty"`
	Rounds         uint8   `json:"rounds,omitempty"`
	MinBet         int64   `json:"min_bet,omitempty"`
	MaxBet         int64   `json:"max_bet,omitempty"`
	CustomParams   string  `json:"custom_params,omitempty"`
	JoinDeadline   *int64  `json:"join_deadline,omitempty"`   // unix seconds
	RevealDeadline *int64  `json:"reveal_deadline,omitempty"` // unix seconds
}

func (h *Handler) CreateMatch(c *gin.Context) {
	playerKey, ok := getPlayerKey(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	var req CreateMatchRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	commitment, ok := decodeHexField(c, req.Commitment)
	if !ok {
		return
	}
	customParams, ok := decodeHexField(c, req.CustomParams)
	if !ok {
		return
	}

	svcReq := service.CreateMatchRequest{
		Kind:         domain.GameKind(req.Kind),
		BetAmount:    req.BetAmount,
		TokenMint:    req.TokenMint,
		FeeBps:       req.FeeBps,
		Commitment:   commitment,
		Rounds:       req.Rounds,
		MinBet:       req.MinBet,
		MaxBet:       req.MaxBet,
		CustomParams: customParams,
	}
	if req.JoinDeadline != nil {
		svcReq.JoinDeadline = time.Unix(*req.JoinDeadline, 0)
	}
	if req.RevealDeadline != nil {
		svcReq.RevealDeadline = time.Unix(*req.RevealDeadline, 0)
	}

	m, err := h.Matches.CreateMatch(c.Request.Context(), playerKey, svcReq)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

type JoinMatchRequest struct {
	Commitment string `json:"commitment,omitempty"`
}

func (h *Handler) JoinMatch(c *gin.Context) {
	playerKey, ok := getPlayerKey(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	var req JoinMatchRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	commitment, ok := decodeHexField(c, req.Commitment)
	if !ok {
		return
	}

	m, err := h.Matches.JoinMatch(c.Request.Context(), playerKey, c.Param("id"), commitment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type CommitRoundRequest struct {
	Commitment string `json:"commitment"`
}

func (h *Handler) CommitRound(c *gin.Context) {
	playerKey, ok := getPlayerKey(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	var req CommitRoundRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	commitment, ok := decodeHexField(c, req.Commitment)
	if !ok {
		return
	}

	m, err := h.Matches.CommitRound(c.Request.Context(), playerKey, c.Param("id"), commitment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type RevealRequest struct {
	Choice byte   `json:"choice"`
	Salt   string `json:"salt"`
	Nonce  uint64 `json:"nonce"`
}

func (h *Handler) Reveal(c *gin.Context) {
	playerKey, ok := getPlayerKey(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	var req RevealRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	salt, ok := decodeHexField(c, req.Salt)
	if !ok {
		return
	}

	m, err := h.Matches.Reveal(c.Request.Context(), playerKey, c.Param("id"), req.Choice, salt, req.Nonce)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type SubmitMoveRequest struct {
	Move string `json:"move"`
}

func (h *Handler) SubmitMove(c *gin.Context) {
	playerKey, ok := getPlayerKey(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	var req SubmitMoveRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	move, ok := decodeHexField(c, req.Move)
	if !ok {
		return
	}

	m, err := h.Matches.SubmitMove(c.Request.Context(), playerKey, c.Param("id"), move)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) SettleMatch(c *gin.Context) {
	playerKey, ok := getPlayerKey(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	m, err := h.Matches.SettleMatch(c.Request.Context(), playerKey, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) ClaimWinnings(c *gin.Context) {
	playerKey, ok := getPlayerKey(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	res, err := h.Matches.ClaimWinnings(c.Request.Context(), playerKey, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"amount": res.Amount,
		"kind":   res.Kind,
		"fee":    res.Fee,
	})
}

func (h *Handler) CancelMatch(c *gin.Context) {
	playerKey, ok := getPlayerKey(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	m, err := h.Matches.CancelMatch(c.Request.Context(), playerKey, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) TimeoutMatch(c *gin.Context) {
	playerKey, ok := getPlayerKey(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	m, err := h.Matches.TimeoutMatch(c.Request.Context(), playerKey, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type DisputeRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) DisputeMatch(c *gin.Context) {
	playerKey, ok := getPlayerKey(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	var req DisputeRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	m, err := h.Matches.DisputeMatch(c.Request.Context(), playerKey, c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type ResolveDisputeRequest struct {
	Ruling string `json:"ruling"` // creator | opponent | tie
}

func (h *Handler) ResolveDispute(c *gin.Context) {
	playerKey, ok := getPlayerKey(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	var req ResolveDisputeRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	var ruling domain.Outcome
	switch req.Ruling {
	case "creator":
		ruling = domain.OutcomeCreator
	case "opponent":
		ruling = domain.OutcomeOpponent
	case "tie":
		ruling = domain.OutcomeDraw
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "ruling must be creator, opponent or tie"})
		return
	}

	m, err := h.Matches.ResolveDispute(c.Request.Context(), playerKey, c.Param("id"), ruling)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) GetMatch(c *gin.Context) {
	m, err := h.Matches.GetMatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) ListOpenMatches(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	matches, err := h.Matches.ListOpen(c.Request.Context(), c.Query("kind"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load matches"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

func (h *Handler) GetVault(c *gin.Context) {
	v, err := h.Matches.GetVault(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	entries, err := h.Matches.VaultEntries(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load entries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vault": v, "entries": entries})
}

func (h *Handler) MatchAudit(c *gin.Context) {
	logs, err := h.Matches.AuditTrail(c.Request.Context(), c.Param("id"), 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load audit trail"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit": logs})
}

// decodeHexField decodes an optional hex string, aborting the request on
// malformed input. Empty input yields nil.
func decodeHexField(c *gin.Context, s string) ([]byte, bool) {
	if s == "" {
		return nil, true
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hex field"})
		return nil, false
	}
	return b, true
}
