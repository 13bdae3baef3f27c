package repository

import (
	"context"

	"pvp_escrow/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VaultRepository manages per-match escrow vaults and their entry ledger.
// Every movement writes both the balance and an entry row in one transaction.
type VaultRepository struct {
	db *pgxpool.Pool
}

func NewVaultRepository(db *pgxpool.Pool) *VaultRepository {
	return &VaultRepository{db: db}
}

// CreateWithTx opens the vault for a new match.
func (r *VaultRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, matchID, asset string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO vaults (match_id, asset) VALUES ($1, $2)`,
		matchID, asset)
	return err
}

// DepositWithTx moves amount into the vault and records the entry.
func (r *VaultRepository) DepositWithTx(ctx context.Context, tx pgx.Tx, matchID, account string, amount int64, kind string) error {
	_, err := tx.Exec(ctx,
		`UPDATE vaults SET balance = balance + $2 WHERE match_id = $1`,
		matchID, amount)
	if err != nil {
		return err
	}
	return r.addEntry(ctx, tx, matchID, account, amount, kind)
}

// WithdrawWithTx moves amount out of the vault and records a negative entry.
// The balance CHECK stops any overdraw of the escrow.
func (r *VaultRepository) WithdrawWithTx(ctx context.Context, tx pgx.Tx, matchID, account string, amount int64, kind string) error {
	tag, err := tx.Exec(ctx,
		`UPDATE vaults SET balance = balance - $2 WHERE match_id = $1 AND balance >= $2`,
		matchID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNothingToClaim
	}
	return r.addEntry(ctx, tx, matchID, account, -amount, kind)
}

func (r *VaultRepository) addEntry(ctx context.Context, tx pgx.Tx, matchID, account string, amount int64, kind string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO vault_entries (match_id, account, amount, kind)
		VALUES ($1, $2, $3, $4)
	`, matchID, account, amount, kind)
	return err
}

// Get returns the vault of a match.
func (r *VaultRepository) Get(ctx context.Context, matchID string) (*domain.Vault, error) {
	var v domain.Vault
	err := r.db.QueryRow(ctx,
		`SELECT match_id, asset, balance, created_at FROM vaults WHERE match_id = $1`,
		matchID,
	).Scan(&v.MatchID, &v.Asset, &v.Balance, &v.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Entries returns the movement ledger of a vault, oldest first.
func (r *VaultRepository) Entries(ctx context.Context, matchID string) ([]*domain.VaultEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, match_id, account, amount, kind, created_at
		FROM vault_entries
		WHERE match_id = $1
		ORDER BY id
	`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.VaultEntry
	for rows.Next() {
		var e domain.VaultEntry
		if err := rows.Scan(&e.ID, &e.MatchID, &e.Account, &e.Amount, &e.Kind, &e.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &e)
	}
	return res, rows.Err()
}
