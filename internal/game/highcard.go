package game

import "pvp_escrow/internal/domain"

// Card ranks, ace high.
const (
	minCard byte = 2
	maxCard byte = 14
)

type highCardComparator struct{}

func (highCardComparator) Kind() domain.GameKind { return domain.GameHighCard }

func (highCardComparator) ValidateMove(move []byte) error {
	if len(move) != 1 || move[0] < minCard || move[0] > maxCard {
		return domain.ErrInvalidChoice
	}
	return nil
}

func (highCardComparator) Compare(_ CompareContext, creator, opponent []byte) domain.Outcome {
	switch {
	case creator[0] > opponent[0]:
		return domain.OutcomeCreator
	case opponent[0] > creator[0]:
		return domain.OutcomeOpponent
	}
	return domain.OutcomeDraw
}
