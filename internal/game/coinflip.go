package game

import "pvp_escrow/internal/domain"

// Coin flip move bytes.
const (
	SideHeads byte = 0
	SideTails byte = 1
)

// coinFlipComparator checks each declared side against the parity of the
// settlement timestamp. The flip itself is deterministic given the settlement
// context, so both sides can audit the result.
type coinFlipComparator struct{}

func (coinFlipComparator) Kind() domain.GameKind { return domain.GameCoinFlip }

func (coinFlipComparator) ValidateMove(move []byte) error {
	if len(move) != 1 || move[0] > SideTails {
		return domain.ErrInvalidChoice
	}
	return nil
}

func (coinFlipComparator) Compare(cc CompareContext, creator, opponent []byte) domain.Outcome {
	flip := byte(cc.SettledAt & 1)
	creatorRight := creator[0] == flip
	opponentRight := opponent[0] == flip
	switch {
	case creatorRight && !opponentRight:
		return domain.OutcomeCreator
	case opponentRight && !creatorRight:
		return domain.OutcomeOpponent
	}
	// both called the same side
	return domain.OutcomeDraw
}
