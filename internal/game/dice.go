package game

import "pvp_escrow/internal/domain"

const (
	diceCount = 2
	diceSides = 6
)

// diceComparator scores a two-die move by its sum. Dice moves carry the die
// values in plaintext, so dice matches skip the commit-reveal path.
type diceComparator struct{}

func (diceComparator) Kind() domain.GameKind { return domain.GameDice }

func (diceComparator) ValidateMove(move []byte) error {
	if len(move) != diceCount {
		return domain.ErrInvalidChoice
	}
	for _, d := range move {
		if d < 1 || d > diceSides {
			return domain.ErrInvalidChoice
		}
	}
	return nil
}

func (diceComparator) Compare(_ CompareContext, creator, opponent []byte) domain.Outcome {
	a := int(creator[0]) + int(creator[1])
	b := int(opponent[0]) + int(opponent[1])
	switch {
	case a > b:
		return domain.OutcomeCreator
	case b > a:
		return domain.OutcomeOpponent
	}
	return domain.OutcomeDraw
}
