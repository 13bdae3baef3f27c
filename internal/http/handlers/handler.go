package handlers

import (
	"pvp_escrow/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB      *pgxpool.Pool
	Matches *service.MatchService
	Ledger  *service.LedgerService
}

func NewHandler(db *pgxpool.Pool, matches *service.MatchService) *Handler {
	return &Handler{
		DB:      db,
		Matches: matches,
		Ledger:  service.NewLedgerService(db),
	}
}

// getPlayerKey reads the authenticated player key set by the JWT middleware.
func getPlayerKey(c interface{ Get(any) (any, bool) }) (string, bool) {
	val, ok := c.Get("player_key")
	if !ok {
		return "", false
	}
	key, ok := val.(string)
	return key, ok && key != ""
}
