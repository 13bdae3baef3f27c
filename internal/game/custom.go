package game

import "pvp_escrow/internal/domain"

const maxCustomMoveLen = 8

// customComparator compares moves as big-endian unsigned numbers. It exists
// so externally defined games can settle through the same escrow without a
// bespoke comparator.
type customComparator struct{}

func (customComparator) Kind() domain.GameKind { return domain.GameCustom }

func (customComparator) ValidateMove(move []byte) error {
	if len(move) == 0 || len(move) > maxCustomMoveLen {
		return domain.ErrInvalidChoice
	}
	return nil
}

func (customComparator) Compare(_ CompareContext, creator, opponent []byte) domain.Outcome {
	a := customValue(creator)
	b := customValue(opponent)
	switch {
	case a > b:
		return domain.OutcomeCreator
	case b > a:
		return domain.OutcomeOpponent
	}
	return domain.OutcomeDraw
}

func customValue(move []byte) uint64 {
	var v uint64
	for _, b := range move {
		v = v<<8 | uint64(b)
	}
	return v
}
