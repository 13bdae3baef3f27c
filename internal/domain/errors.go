package domain

import "errors"

// Sentinel errors for every rejectable condition in the engine. Services and
// handlers compare with errors.Is; handlers map them onto HTTP status codes.
var (
	// Validation.
	ErrInvalidBetAmount = errors.New("invalid bet amount")
	ErrInsufficientBet  = errors.New("bet below minimum for this game")
	ErrBetTooLarge      = errors.New("bet above maximum for this game")
	ErrInvalidFeeRate   = errors.New("fee rate above 1000 basis points")
	ErrInvalidDeadline  = errors.New("deadline not in the future or misordered")
	ErrInvalidChoice    = errors.New("move value out of range for game type")
	ErrInvalidGameType  = errors.New("unknown game type")
	ErrInvalidPlayerKey = errors.New("player key must be 32 bytes hex encoded")

	// Authorization.
	ErrUnauthorized         = errors.New("unauthorized")
	ErrNotParticipant       = errors.New("caller is not a participant of this match")
	ErrOnlyCreatorCanCancel = errors.New("only the creator can cancel before an opponent joins")
	ErrCannotPlaySelf       = errors.New("cannot join a match you created")

	// State conflicts.
	ErrInvalidMatchStatus  = errors.New("operation not allowed in current match status")
	ErrInvalidGameState    = errors.New("game state does not allow this operation")
	ErrMatchAlreadyStarted = errors.New("match already has an opponent")
	ErrAlreadyCommitted    = errors.New("commitment already recorded for this round")
	ErrAlreadyRevealed     = errors.New("move already recorded for this round")
	ErrDeadlinePassed      = errors.New("deadline has passed")
	ErrDeadlineNotPassed   = errors.New("deadline has not passed yet")
	ErrMatchNotCompleted   = errors.New("match is not in a claimable state")
	ErrCannotCancel        = errors.New("match cannot be cancelled now")
	ErrNothingToClaim      = errors.New("nothing left to claim")
	ErrGameNotActive       = errors.New("game type is not active in the registry")
	ErrMatchNotFound       = errors.New("match not found")
	ErrInsufficientFunds   = errors.New("insufficient balance")

	// Integrity.
	ErrInvalidCommitment = errors.New("commitment verification failed")
	ErrCorruptRoundState = errors.New("round state bytes are corrupt")
)
