package handlers

import (
	"errors"
	"net/http"

	"pvp_escrow/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError maps engine sentinel errors onto HTTP status codes. Unknown
// errors become opaque 500s so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrMatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotParticipant),
		errors.Is(err, domain.ErrOnlyCreatorCanCancel):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrInvalidMatchStatus),
		errors.Is(err, domain.ErrInvalidGameState),
		errors.Is(err, domain.ErrMatchAlreadyStarted),
		errors.Is(err, domain.ErrAlreadyCommitted),
		errors.Is(err, domain.ErrAlreadyRevealed),
		errors.Is(err, domain.ErrDeadlinePassed),
		errors.Is(err, domain.ErrDeadlineNotPassed),
		errors.Is(err, domain.ErrMatchNotCompleted),
		errors.Is(err, domain.ErrCannotCancel),
		errors.Is(err, domain.ErrNothingToClaim):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrInvalidBetAmount),
		errors.Is(err, domain.ErrInsufficientBet),
		errors.Is(err, domain.ErrBetTooLarge),
		errors.Is(err, domain.ErrInvalidFeeRate),
		errors.Is(err, domain.ErrInvalidDeadline),
		errors.Is(err, domain.ErrInvalidChoice),
		errors.Is(err, domain.ErrInvalidGameType),
		errors.Is(err, domain.ErrInvalidPlayerKey),
		errors.Is(err, domain.ErrInvalidCommitment),
		errors.Is(err, domain.ErrCannotPlaySelf),
		errors.Is(err, domain.ErrGameNotActive),
		errors.Is(err, domain.ErrInsufficientFunds):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
