package repository

import (
	"context"

	"pvp_escrow/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegistryRepository reads and maintains the game registry.
type RegistryRepository struct {
	db *pgxpool.Pool
}

func NewRegistryRepository(db *pgxpool.Pool) *RegistryRepository {
	return &RegistryRepository{db: db}
}

// IsActive reports whether a game kind is registered and enabled.
func (r *RegistryRepository) IsActive(ctx context.Context, kind domain.GameKind) (bool, error) {
	var active bool
	err := r.db.QueryRow(ctx,
		`SELECT is_active FROM game_registry WHERE kind = $1`, kind,
	).Scan(&active)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	return active, err
}

// List returns all registered games.
func (r *RegistryRepository) List(ctx context.Context) ([]*domain.GameDefinition, error) {
	rows, err := r.db.Query(ctx, `
		SELECT kind, name, is_active, total_matches, created_at
		FROM game_registry
		ORDER BY kind
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.GameDefinition
	for rows.Next() {
		var g domain.GameDefinition
		if err := rows.Scan(&g.Kind, &g.Name, &g.IsActive, &g.TotalMatches, &g.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &g)
	}
	return res, rows.Err()
}

// SetActive toggles a game kind.
func (r *RegistryRepository) SetActive(ctx context.Context, kind domain.GameKind, active bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE game_registry SET is_active = $2 WHERE kind = $1`, kind, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidGameType
	}
	return nil
}

// IncrementMatchesWithTx bumps the per-kind match counter.
func (r *RegistryRepository) IncrementMatchesWithTx(ctx context.Context, tx pgx.Tx, kind domain.GameKind) error {
	_, err := tx.Exec(ctx,
		`UPDATE game_registry SET total_matches = total_matches + 1 WHERE kind = $1`, kind)
	return err
}
