package game

import "pvp_escrow/internal/domain"

// CompareContext carries deterministic environment values a comparator may
// need at settlement time, such as the timestamp parity for coin flips.
type CompareContext struct {
	SettledAt int64
}

// Comparator resolves one round of a specific game kind from two recorded
// moves. Implementations are pure and stateless.
type Comparator interface {
	Kind() domain.GameKind
	// ValidateMove rejects malformed or out-of-range move bytes before they
	// are recorded on the match.
	ValidateMove(move []byte) error
	// Compare resolves a round; both moves are already validated.
	Compare(cc CompareContext, creator, opponent []byte) domain.Outcome
}

var comparators = map[domain.GameKind]Comparator{
	domain.GameRPS:      rpsComparator{},
	domain.GameDice:     diceComparator{},
	domain.GameCoinFlip: coinFlipComparator{},
	domain.GameHighCard: highCardComparator{},
	domain.GameCustom:   customComparator{},
}

// ForKind returns the comparator for a game kind.
func ForKind(k domain.GameKind) (Comparator, error) {
	c, ok := comparators[k]
	if !ok {
		return nil, domain.ErrInvalidGameType
	}
	return c, nil
}
