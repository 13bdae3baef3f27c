package domain

import "time"

// GameKind is the closed set of supported game types. Adding a kind means
// registering a comparator for it; the lifecycle never changes.
type GameKind string

const (
	GameRPS      GameKind = "rps"
	GameDice     GameKind = "dice"
	GameCoinFlip GameKind = "coinflip"
	GameHighCard GameKind = "highcard"
	GameCustom   GameKind = "custom"
)

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	StatusWaitingForOpponent MatchStatus = "waiting_for_opponent"
	StatusInProgress         MatchStatus = "in_progress"
	StatusCompleted          MatchStatus = "completed"
	StatusCancelled          MatchStatus = "cancelled"
	StatusTimedOut           MatchStatus = "timed_out"
	StatusDisputed           MatchStatus = "disputed"
)

// Outcome of a round or a whole match, seen from the creator's side.
type Outcome int8

const (
	OutcomeDraw     Outcome = 0
	OutcomeCreator  Outcome = 1
	OutcomeOpponent Outcome = 2
)

const (
	// NativeAsset is the ledger asset used when a match has no token mint.
	NativeAsset = "native"
	// MaxFeeBps caps the fee rate at 10%.
	MaxFeeBps      = 1000
	FeeDenominator = 10000
)

// GameConfig is the per-match game configuration fixed at creation.
type GameConfig struct {
	MaxPlayers   uint8  `json:"max_players"`
	MinBet       int64  `json:"min_bet"`
	MaxBet       int64  `json:"max_bet"`
	Rounds       uint8  `json:"rounds"`
	CustomParams []byte `json:"custom_params,omitempty"`
}

// Match is the aggregate every engine operation mutates. One row per game
// instance; all mutations happen inside a serialized database transaction
// holding the row lock.
type Match struct {
	ID        string      `json:"id"`
	Kind      GameKind    `json:"kind"`
	Status    MatchStatus `json:"status"`
	Creator   string      `json:"creator"`
	Opponent  *string     `json:"opponent,omitempty"`
	BetAmount int64       `json:"bet_amount"`
	TokenMint *string     `json:"token_mint,omitempty"`
	TotalPot  int64       `json:"total_pot"`
	FeeBps    int32       `json:"fee_bps"`
	Config    GameConfig  `json:"config"`

	// Committed marks a match created with a commitment digest; moves then
	// arrive only via reveal. Plaintext matches submit moves directly.
	Committed          bool   `json:"committed"`
	CommitmentCreator  []byte `json:"commitment_creator,omitempty"`
	CommitmentOpponent []byte `json:"commitment_opponent,omitempty"`
	MoveCreator        []byte `json:"-"`
	MoveOpponent       []byte `json:"-"`

	JoinDeadline   time.Time `json:"join_deadline"`
	RevealDeadline time.Time `json:"reveal_deadline"`

	Winner        *string `json:"winner,omitempty"`
	RoundState    []byte  `json:"round_state,omitempty"`
	DisputeReason *string `json:"dispute_reason,omitempty"`

	CreatorPaid  bool `json:"creator_paid"`
	OpponentPaid bool `json:"opponent_paid"`
	FeePaid      bool `json:"fee_paid"`

	CreatedAt      time.Time  `json:"created_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
	LastProgressAt time.Time  `json:"last_progress_at"`
}

// Asset returns the ledger asset this match is staked in.
func (m *Match) Asset() string {
	if m.TokenMint != nil && *m.TokenMint != "" {
		return *m.TokenMint
	}
	return NativeAsset
}

// IsParticipant reports whether key is the creator or the joined opponent.
func (m *Match) IsParticipant(key string) bool {
	if key == m.Creator {
		return true
	}
	return m.Opponent != nil && *m.Opponent == key
}

// IsCreator reports whether key is the match creator.
func (m *Match) IsCreator(key string) bool { return key == m.Creator }

// IsTerminal reports whether the match reached a state claims can run from.
// Disputed is deliberately excluded: disputes freeze claims.
func (m *Match) IsTerminal() bool {
	switch m.Status {
	case StatusCompleted, StatusCancelled, StatusTimedOut:
		return true
	}
	return false
}

// FeeAmount is the fee carved out of a winner-take-all payout.
func (m *Match) FeeAmount() int64 {
	return m.TotalPot * int64(m.FeeBps) / FeeDenominator
}

// WinnerPayout is the winner's entitlement after the fee.
func (m *Match) WinnerPayout() int64 {
	return m.TotalPot - m.FeeAmount()
}
