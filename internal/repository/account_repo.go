package repository

import (
	"context"

	"pvp_escrow/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountRepository is the player ledger: one balance row per (player, asset).
type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

// Ensure creates the account row if it does not exist yet.
func (r *AccountRepository) Ensure(ctx context.Context, playerKey, asset string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (player_key, asset) VALUES ($1, $2)
		ON CONFLICT (player_key, asset) DO NOTHING
	`, playerKey, asset)
	return err
}

// GetBalance returns the current balance, zero for unknown accounts.
func (r *AccountRepository) GetBalance(ctx context.Context, playerKey, asset string) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx,
		`SELECT balance FROM accounts WHERE player_key = $1 AND asset = $2`,
		playerKey, asset,
	).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	return balance, err
}

// DebitWithTx takes amount off the balance; the CHECK constraint plus the
// conditional WHERE make overdrafts impossible under concurrency.
func (r *AccountRepository) DebitWithTx(ctx context.Context, tx pgx.Tx, playerKey, asset string, amount int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE accounts SET balance = balance - $3
		WHERE player_key = $1 AND asset = $2 AND balance >= $3
	`, playerKey, asset, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientFunds
	}
	return nil
}

// CreditWithTx adds amount, creating the account row on first credit.
func (r *AccountRepository) CreditWithTx(ctx context.Context, tx pgx.Tx, playerKey, asset string, amount int64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO accounts (player_key, asset, balance) VALUES ($1, $2, $3)
		ON CONFLICT (player_key, asset) DO UPDATE SET balance = accounts.balance + $3
	`, playerKey, asset, amount)
	return err
}

// Credit is CreditWithTx outside a transaction, used by the deposit faucet.
func (r *AccountRepository) Credit(ctx context.Context, playerKey, asset string, amount int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (player_key, asset, balance) VALUES ($1, $2, $3)
		ON CONFLICT (player_key, asset) DO UPDATE SET balance = accounts.balance + $3
	`, playerKey, asset, amount)
	return err
}
