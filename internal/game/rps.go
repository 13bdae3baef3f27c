package game

import "pvp_escrow/internal/domain"

// Rock paper scissors move bytes.
const (
	ChoiceRock     byte = 0
	ChoicePaper    byte = 1
	ChoiceScissors byte = 2
)

type rpsComparator struct{}

func (rpsComparator) Kind() domain.GameKind { return domain.GameRPS }

func (rpsComparator) ValidateMove(move []byte) error {
	if len(move) != 1 || move[0] > ChoiceScissors {
		return domain.ErrInvalidChoice
	}
	return nil
}

func (rpsComparator) Compare(_ CompareContext, creator, opponent []byte) domain.Outcome {
	a, b := creator[0], opponent[0]
	if a == b {
		return domain.OutcomeDraw
	}
	if rpsBeats(a, b) {
		return domain.OutcomeCreator
	}
	return domain.OutcomeOpponent
}

// rock beats scissors, paper beats rock, scissors beats paper
func rpsBeats(a, b byte) bool {
	switch a {
	case ChoiceRock:
		return b == ChoiceScissors
	case ChoicePaper:
		return b == ChoiceRock
	case ChoiceScissors:
		return b == ChoicePaper
	}
	return false
}
