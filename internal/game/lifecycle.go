package game

import (
	"math"
	"time"

	"pvp_escrow/internal/domain"
)

// Lifecycle operations. Every function here is pure state logic on a
// *domain.Match loaded under a row lock; the service layer persists the
// mutated match and moves funds in the same transaction.

// CreateParams are the caller-supplied inputs of CreateMatch.
type CreateParams struct {
	ID             string
	Kind           domain.GameKind
	Creator        string
	BetAmount      int64
	TokenMint      *string
	FeeBps         int32
	Commitment     []byte // nil for plaintext matches
	JoinDeadline   time.Time
	RevealDeadline time.Time
	Config         domain.GameConfig
}

// NewMatch validates the parameters and builds a match waiting for an
// opponent. The creator's stake is escrowed by the caller in the same
// transaction that inserts the row.
func NewMatch(p CreateParams, now time.Time) (*domain.Match, error) {
	if _, err := ForKind(p.Kind); err != nil {
		return nil, err
	}
	if p.BetAmount <= 0 {
		return nil, domain.ErrInvalidBetAmount
	}
	// the doubled pot and the pot-times-fee-bps product must stay inside int64
	if p.BetAmount > math.MaxInt64/(2*domain.FeeDenominator) {
		return nil, domain.ErrBetTooLarge
	}
	if p.Config.MinBet > 0 && p.BetAmount < p.Config.MinBet {
		return nil, domain.ErrInsufficientBet
	}
	if p.Config.MaxBet > 0 && p.BetAmount > p.Config.MaxBet {
		return nil, domain.ErrBetTooLarge
	}
	if p.FeeBps < 0 || p.FeeBps > domain.MaxFeeBps {
		return nil, domain.ErrInvalidFeeRate
	}
	if !p.JoinDeadline.After(now) {
		return nil, domain.ErrInvalidDeadline
	}
	if !p.RevealDeadline.After(p.JoinDeadline) {
		return nil, domain.ErrInvalidDeadline
	}
	if p.Commitment != nil && len(p.Commitment) != CommitmentSize {
		return nil, domain.ErrInvalidCommitment
	}
	// dice moves are two bytes and cannot ride the single-byte reveal
	if p.Commitment != nil && p.Kind == domain.GameDice {
		return nil, domain.ErrInvalidGameType
	}

	cfg := p.Config
	if cfg.MaxPlayers == 0 {
		cfg.MaxPlayers = 2
	}
	if cfg.Rounds == 0 {
		cfg.Rounds = 1
	}

	m := &domain.Match{
		ID:             p.ID,
		Kind:           p.Kind,
		Status:         domain.StatusWaitingForOpponent,
		Creator:        p.Creator,
		BetAmount:      p.BetAmount,
		TokenMint:      p.TokenMint,
		TotalPot:       p.BetAmount * 2,
		FeeBps:         p.FeeBps,
		Config:         cfg,
		Committed:      p.Commitment != nil,
		JoinDeadline:   p.JoinDeadline,
		RevealDeadline: p.RevealDeadline,
		CreatedAt:      now,
		LastProgressAt: now,
	}
	if m.Committed {
		m.CommitmentCreator = append([]byte(nil), p.Commitment...)
	}
	return m, nil
}

// Join fills the opponent slot and starts the match. Exactly one join can
// ever succeed because the match row is locked while this runs.
func Join(m *domain.Match, opponent string, commitment []byte, now time.Time) error {
	if m.Status != domain.StatusWaitingForOpponent {
		return domain.ErrInvalidMatchStatus
	}
	if m.Opponent != nil {
		return domain.ErrMatchAlreadyStarted
	}
	if opponent == m.Creator {
		return domain.ErrCannotPlaySelf
	}
	if now.After(m.JoinDeadline) {
		return domain.ErrDeadlinePassed
	}
	if m.Committed {
		if len(commitment) != CommitmentSize {
			return domain.ErrInvalidCommitment
		}
		m.CommitmentOpponent = append([]byte(nil), commitment...)
	} else if commitment != nil {
		return domain.ErrInvalidCommitment
	}

	m.Opponent = &opponent
	m.Status = domain.StatusInProgress
	m.StartedAt = &now
	m.LastProgressAt = now
	return nil
}

// CommitRound records a player's fresh commitment for the next round of a
// committed multi-round match. Set-once per round.
func CommitRound(m *domain.Match, player string, commitment []byte, now time.Time) error {
	if m.Status != domain.StatusInProgress || !m.Committed {
		return domain.ErrInvalidMatchStatus
	}
	if !m.IsParticipant(player) {
		return domain.ErrNotParticipant
	}
	if len(commitment) != CommitmentSize {
		return domain.ErrInvalidCommitment
	}
	if m.IsCreator(player) {
		if m.CommitmentCreator != nil {
			return domain.ErrAlreadyCommitted
		}
		m.CommitmentCreator = append([]byte(nil), commitment...)
	} else {
		if m.CommitmentOpponent != nil {
			return domain.ErrAlreadyCommitted
		}
		m.CommitmentOpponent = append([]byte(nil), commitment...)
	}
	m.LastProgressAt = now
	return nil
}

// Reveal opens a player's commitment. The digest is checked before the
// choice range, so any tampered preimage fails as InvalidCommitment rather
// than leaking which field changed.
func Reveal(m *domain.Match, player string, choice byte, salt [SaltSize]byte, nonce uint64, now time.Time) error {
	if m.Status != domain.StatusInProgress {
		return domain.ErrInvalidMatchStatus
	}
	if !m.Committed {
		return domain.ErrInvalidGameState
	}
	if !m.IsParticipant(player) {
		return domain.ErrNotParticipant
	}
	if now.After(m.RevealDeadline) {
		return domain.ErrDeadlinePassed
	}

	// nobody opens until both fresh commitments for the round are on record
	if m.CommitmentCreator == nil || m.CommitmentOpponent == nil {
		return domain.ErrInvalidGameState
	}

	commitment := m.CommitmentCreator
	moved := m.MoveCreator != nil
	if !m.IsCreator(player) {
		commitment = m.CommitmentOpponent
		moved = m.MoveOpponent != nil
	}
	if moved {
		return domain.ErrAlreadyRevealed
	}

	key, err := PlayerKeyBytes(player)
	if err != nil {
		return err
	}
	if !VerifyCommitment(commitment, choice, salt, key, nonce) {
		return domain.ErrInvalidCommitment
	}

	cmp, err := ForKind(m.Kind)
	if err != nil {
		return err
	}
	if err := cmp.ValidateMove([]byte{choice}); err != nil {
		return err
	}

	if m.IsCreator(player) {
		m.MoveCreator = []byte{choice}
	} else {
		m.MoveOpponent = []byte{choice}
	}
	m.LastProgressAt = now
	return nil
}

// SubmitMove records a plaintext move for matches created without a
// commitment. Set-once per round, same as Reveal.
func SubmitMove(m *domain.Match, player string, move []byte, now time.Time) error {
	if m.Status != domain.StatusInProgress {
		return domain.ErrInvalidMatchStatus
	}
	if m.Committed {
		return domain.ErrInvalidGameState
	}
	if !m.IsParticipant(player) {
		return domain.ErrNotParticipant
	}
	if now.After(m.RevealDeadline) {
		return domain.ErrDeadlinePassed
	}

	cmp, err := ForKind(m.Kind)
	if err != nil {
		return err
	}
	if err := cmp.ValidateMove(move); err != nil {
		return err
	}

	if m.IsCreator(player) {
		if m.MoveCreator != nil {
			return domain.ErrAlreadyRevealed
		}
		m.MoveCreator = append([]byte(nil), move...)
	} else {
		if m.MoveOpponent != nil {
			return domain.ErrAlreadyRevealed
		}
		m.MoveOpponent = append([]byte(nil), move...)
	}
	m.LastProgressAt = now
	return nil
}

// BothMovesIn reports whether the current round can settle.
func BothMovesIn(m *domain.Match) bool {
	return m.MoveCreator != nil && m.MoveOpponent != nil
}

// Settle resolves the current round and, when decisive, the match. For
// multi-round matches an indecisive round clears the per-round fields so
// fresh commitments and moves can arrive.
func Settle(m *domain.Match, now time.Time) error {
	if m.Status != domain.StatusInProgress {
		return domain.ErrInvalidMatchStatus
	}
	if !BothMovesIn(m) {
		return domain.ErrInvalidGameState
	}

	cmp, err := ForKind(m.Kind)
	if err != nil {
		return err
	}
	result := cmp.Compare(CompareContext{SettledAt: now.Unix()}, m.MoveCreator, m.MoveOpponent)

	if m.Config.Rounds <= 1 {
		complete(m, result, now)
		return nil
	}

	rm := NewRoundManager(m.Config.Rounds)
	if m.RoundState != nil {
		rm, err = DecodeRoundState(m.RoundState)
		if err != nil {
			return err
		}
	}

	moves := append(append([]byte(nil), m.MoveCreator...), m.MoveOpponent...)
	verdict := rm.ProcessRound(result, now.Unix(), moves)
	m.RoundState = rm.Encode()

	switch verdict {
	case RoundMatchWon:
		complete(m, rm.Leader(), now)
	case RoundForced:
		complete(m, rm.ForcedWinner(m.ID), now)
	default:
		// next round: clear per-round fields, require fresh commitments
		m.MoveCreator = nil
		m.MoveOpponent = nil
		if m.Committed {
			m.CommitmentCreator = nil
			m.CommitmentOpponent = nil
		}
		m.LastProgressAt = now
	}
	return nil
}

func complete(m *domain.Match, result domain.Outcome, now time.Time) {
	switch result {
	case domain.OutcomeCreator:
		m.Winner = &m.Creator
	case domain.OutcomeOpponent:
		m.Winner = m.Opponent
	default:
		m.Winner = nil
	}
	m.Status = domain.StatusCompleted
	m.EndedAt = &now
	m.LastProgressAt = now
}

// Cancel aborts a match. Before an opponent joins only the creator may
// cancel; after that either participant may, but only once the match has
// made no progress for the grace period.
func Cancel(m *domain.Match, caller string, grace time.Duration, now time.Time) error {
	switch m.Status {
	case domain.StatusWaitingForOpponent:
		if !m.IsCreator(caller) {
			return domain.ErrOnlyCreatorCanCancel
		}
	case domain.StatusInProgress:
		if !m.IsParticipant(caller) {
			return domain.ErrNotParticipant
		}
		if now.Sub(m.LastProgressAt) < grace {
			return domain.ErrCannotCancel
		}
	default:
		return domain.ErrCannotCancel
	}
	m.Status = domain.StatusCancelled
	m.Winner = nil
	m.EndedAt = &now
	m.LastProgressAt = now
	return nil
}

// Timeout expires a match past its deadline. Anyone may call it. A reveal
// timeout with exactly one recorded move forfeits the silent side.
func Timeout(m *domain.Match, now time.Time) error {
	switch m.Status {
	case domain.StatusWaitingForOpponent:
		if !now.After(m.JoinDeadline) {
			return domain.ErrDeadlineNotPassed
		}
		m.Winner = nil
	case domain.StatusInProgress:
		if !now.After(m.RevealDeadline) {
			return domain.ErrDeadlineNotPassed
		}
		switch {
		case m.MoveCreator != nil && m.MoveOpponent == nil:
			m.Winner = &m.Creator
		case m.MoveOpponent != nil && m.MoveCreator == nil:
			m.Winner = m.Opponent
		default:
			// nobody revealed: void, both stakes refunded
			m.Winner = nil
		}
	default:
		return domain.ErrInvalidMatchStatus
	}
	m.Status = domain.StatusTimedOut
	m.EndedAt = &now
	m.LastProgressAt = now
	return nil
}

// Dispute flags a completed match, freezing claims until resolution.
func Dispute(m *domain.Match, caller, reason string, now time.Time) error {
	if m.Status != domain.StatusCompleted {
		return domain.ErrInvalidMatchStatus
	}
	if !m.IsParticipant(caller) {
		return domain.ErrNotParticipant
	}
	m.Status = domain.StatusDisputed
	m.DisputeReason = &reason
	m.LastProgressAt = now
	return nil
}

// ResolveDispute re-completes a disputed match with the ruled outcome. The
// service layer checks that the caller is the registry authority.
func ResolveDispute(m *domain.Match, ruling domain.Outcome, now time.Time) error {
	if m.Status != domain.StatusDisputed {
		return domain.ErrInvalidMatchStatus
	}
	complete(m, ruling, now)
	return nil
}

// ClaimResult says how much the caller withdraws and whether the fee moves
// with it.
type ClaimResult struct {
	Amount int64
	Kind   string
	Fee    int64
}

// Claim computes the caller's entitlement from a terminal match and flips
// the paid flags. A second claim by the same party finds nothing. Disputed
// matches are not terminal, so claims against them fail here.
func Claim(m *domain.Match, caller string) (ClaimResult, error) {
	if !m.IsTerminal() {
		return ClaimResult{}, domain.ErrMatchNotCompleted
	}
	if !m.IsParticipant(caller) {
		return ClaimResult{}, domain.ErrNotParticipant
	}

	isCreator := m.IsCreator(caller)
	paid := m.CreatorPaid
	if !isCreator {
		paid = m.OpponentPaid
	}
	if paid {
		return ClaimResult{}, domain.ErrNothingToClaim
	}

	// The losing side of a decided match has no entitlement.
	if m.Winner != nil && *m.Winner != caller {
		return ClaimResult{}, domain.ErrNothingToClaim
	}

	res := ClaimResult{Kind: domain.EntryRefund, Amount: m.BetAmount}
	if m.Winner != nil {
		// Winner takes the pot less the fee; the fee moves to the
		// collector with the first winning claim.
		res = ClaimResult{Kind: domain.EntryPayout, Amount: m.WinnerPayout()}
		if !m.FeePaid {
			res.Fee = m.FeeAmount()
			m.FeePaid = true
		}
	}

	if isCreator {
		m.CreatorPaid = true
	} else {
		m.OpponentPaid = true
	}
	return res, nil
}
