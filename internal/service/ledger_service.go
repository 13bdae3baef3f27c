package service

import (
	"context"

	"pvp_escrow/internal/domain"
	"pvp_escrow/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerService handles player ledger accounts outside of match flows.
type LedgerService struct {
	db       *pgxpool.Pool
	accounts *repository.AccountRepository
}

func NewLedgerService(db *pgxpool.Pool) *LedgerService {
	return &LedgerService{
		db:       db,
		accounts: repository.NewAccountRepository(db),
	}
}

// Register makes sure the player has a native ledger account.
func (s *LedgerService) Register(ctx context.Context, playerKey string) error {
	return s.accounts.Ensure(ctx, playerKey, domain.NativeAsset)
}

func (s *LedgerService) GetBalance(ctx context.Context, playerKey, asset string) (int64, error) {
	if asset == "" {
		asset = domain.NativeAsset
	}
	return s.accounts.GetBalance(ctx, playerKey, asset)
}

// Deposit credits a player's account. This is the funding entry point; in a
// deployment with real custody it would be driven by deposit confirmations.
func (s *LedgerService) Deposit(ctx context.Context, playerKey, asset string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidBetAmount
	}
	if asset == "" {
		asset = domain.NativeAsset
	}
	if err := s.accounts.Credit(ctx, playerKey, asset, amount); err != nil {
		return 0, err
	}
	return s.accounts.GetBalance(ctx, playerKey, asset)
}
