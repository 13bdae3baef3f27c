package repository

import (
	"context"
	"errors"

	"pvp_escrow/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const matchColumns = `id, kind, status, creator, opponent, bet_amount, token_mint,
	total_pot, fee_bps, max_players, min_bet, max_bet, rounds, custom_params,
	committed, commitment_creator, commitment_opponent, move_creator, move_opponent,
	join_deadline, reveal_deadline, winner, round_state, dispute_reason,
	creator_paid, opponent_paid, fee_paid,
	created_at, started_at, ended_at, last_progress_at`

type MatchRepository struct {
	db *pgxpool.Pool
}

func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// CreateWithTx inserts the match inside the caller's transaction.
func (r *MatchRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, m *domain.Match) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO matches (id, kind, status, creator, bet_amount, token_mint,
			total_pot, fee_bps, max_players, min_bet, max_bet, rounds, custom_params,
			committed, commitment_creator, join_deadline, reveal_deadline,
			created_at, last_progress_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`, m.ID, m.Kind, m.Status, m.Creator, m.BetAmount, m.TokenMint,
		m.TotalPot, m.FeeBps, m.Config.MaxPlayers, m.Config.MinBet, m.Config.MaxBet,
		m.Config.Rounds, m.Config.CustomParams,
		m.Committed, m.CommitmentCreator, m.JoinDeadline, m.RevealDeadline,
		m.CreatedAt, m.LastProgressAt)
	return err
}

// GetForUpdate loads a match under a row lock. Every mutating operation goes
// through this so concurrent joins, reveals and claims serialize.
func (r *MatchRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Match, error) {
	row := tx.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = $1 FOR UPDATE`, id)
	return scanMatch(row)
}

// Get loads a match without locking, for reads.
func (r *MatchRepository) Get(ctx context.Context, id string) (*domain.Match, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	return scanMatch(row)
}

// UpdateWithTx writes back every mutable field.
func (r *MatchRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, m *domain.Match) error {
	_, err := tx.Exec(ctx, `
		UPDATE matches SET
			status = $2, opponent = $3,
			commitment_creator = $4, commitment_opponent = $5,
			move_creator = $6, move_opponent = $7,
			winner = $8, round_state = $9, dispute_reason = $10,
			creator_paid = $11, opponent_paid = $12, fee_paid = $13,
			started_at = $14, ended_at = $15, last_progress_at = $16
		WHERE id = $1
	`, m.ID, m.Status, m.Opponent,
		m.CommitmentCreator, m.CommitmentOpponent,
		m.MoveCreator, m.MoveOpponent,
		m.Winner, m.RoundState, m.DisputeReason,
		m.CreatorPaid, m.OpponentPaid, m.FeePaid,
		m.StartedAt, m.EndedAt, m.LastProgressAt)
	return err
}

// ListOpen returns joinable matches, newest first.
func (r *MatchRepository) ListOpen(ctx context.Context, kind string, limit int) ([]*domain.Match, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE status = 'waiting_for_opponent'
		ORDER BY created_at DESC LIMIT $1`
	args := []any{limit}
	if kind != "" {
		query = `SELECT ` + matchColumns + ` FROM matches
			WHERE status = 'waiting_for_opponent' AND kind = $2
			ORDER BY created_at DESC LIMIT $1`
		args = append(args, kind)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

// ListByPlayer returns matches the player participates in, newest first.
func (r *MatchRepository) ListByPlayer(ctx context.Context, player string, limit int) ([]*domain.Match, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE creator = $1 OR opponent = $1
		ORDER BY created_at DESC LIMIT $2
	`, player, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func scanMatch(row pgx.Row) (*domain.Match, error) {
	var m domain.Match
	err := row.Scan(&m.ID, &m.Kind, &m.Status, &m.Creator, &m.Opponent,
		&m.BetAmount, &m.TokenMint, &m.TotalPot, &m.FeeBps,
		&m.Config.MaxPlayers, &m.Config.MinBet, &m.Config.MaxBet,
		&m.Config.Rounds, &m.Config.CustomParams,
		&m.Committed, &m.CommitmentCreator, &m.CommitmentOpponent,
		&m.MoveCreator, &m.MoveOpponent,
		&m.JoinDeadline, &m.RevealDeadline,
		&m.Winner, &m.RoundState, &m.DisputeReason,
		&m.CreatorPaid, &m.OpponentPaid, &m.FeePaid,
		&m.CreatedAt, &m.StartedAt, &m.EndedAt, &m.LastProgressAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
