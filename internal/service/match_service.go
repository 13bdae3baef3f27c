package service

import (
	"context"
	"time"

	"pvp_escrow/internal/config"
	"pvp_escrow/internal/domain"
	"pvp_escrow/internal/game"
	"pvp_escrow/internal/logger"
	"pvp_escrow/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventSink receives match events for fan-out to subscribed clients. The ws
// hub implements it; a nil sink disables events.
type EventSink interface {
	Publish(matchID, event string, payload any)
}

// MatchService binds the pure lifecycle logic to storage. Every mutating
// operation runs in one transaction: lock the match row, apply the lifecycle
// function, persist the match and move funds, write the audit entry.
type MatchService struct {
	db       *pgxpool.Pool
	matches  *repository.MatchRepository
	accounts *repository.AccountRepository
	vaults   *repository.VaultRepository
	registry *repository.RegistryRepository
	audit    *repository.AuditRepository

	feeCollector      string
	registryAuthority string
	cancelGrace       time.Duration
	defaultMinBet     int64
	defaultMaxBet     int64
	joinTimeout       time.Duration
	revealTimeout     time.Duration

	events EventSink
}

func NewMatchService(db *pgxpool.Pool, cfg *config.Config, events EventSink) *MatchService {
	return &MatchService{
		db:                db,
		matches:           repository.NewMatchRepository(db),
		accounts:          repository.NewAccountRepository(db),
		vaults:            repository.NewVaultRepository(db),
		registry:          repository.NewRegistryRepository(db),
		audit:             repository.NewAuditRepository(db),
		feeCollector:      cfg.FeeCollector,
		registryAuthority: cfg.RegistryAuthority,
		cancelGrace:       time.Duration(cfg.CancelGraceSeconds) * time.Second,
		defaultMinBet:     cfg.MinBet,
		defaultMaxBet:     cfg.MaxBet,
		joinTimeout:       time.Duration(cfg.JoinTimeoutSeconds) * time.Second,
		revealTimeout:     time.Duration(cfg.RevealTimeoutSeconds) * time.Second,
		events:            events,
	}
}

// CreateMatchRequest carries the caller inputs of CreateMatch. Zero deadlines
// fall back to the configured timeouts, zero bet limits to the service-wide
// ones; a MaxBet above the service-wide ceiling is clamped down to it.
type CreateMatchRequest struct {
	Kind           domain.GameKind
	BetAmount      int64
	TokenMint      *string
	FeeBps         int32
	Commitment     []byte
	Rounds         uint8
	MinBet         int64
	MaxBet         int64
	CustomParams   []byte
	JoinDeadline   time.Time
	RevealDeadline time.Time
}

func (s *MatchService) CreateMatch(ctx context.Context, creator string, req CreateMatchRequest) (*domain.Match, error) {
	active, err := s.registry.IsActive(ctx, req.Kind)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, domain.ErrGameNotActive
	}

	now := time.Now()
	if req.JoinDeadline.IsZero() {
		req.JoinDeadline = now.Add(s.joinTimeout)
	}
	if req.RevealDeadline.IsZero() {
		req.RevealDeadline = req.JoinDeadline.Add(s.revealTimeout)
	}
	minBet, maxBet := req.MinBet, req.MaxBet
	if minBet == 0 {
		minBet = s.defaultMinBet
	}
	// a per-match ceiling can only tighten the service-wide one
	if maxBet == 0 || (s.defaultMaxBet > 0 && maxBet > s.defaultMaxBet) {
		maxBet = s.defaultMaxBet
	}

	m, err := game.NewMatch(game.CreateParams{
		ID:             uuid.New().String(),
		Kind:           req.Kind,
		Creator:        creator,
		BetAmount:      req.BetAmount,
		TokenMint:      req.TokenMint,
		FeeBps:         req.FeeBps,
		Commitment:     req.Commitment,
		JoinDeadline:   req.JoinDeadline,
		RevealDeadline: req.RevealDeadline,
		Config: domain.GameConfig{
			MinBet:       minBet,
			MaxBet:       maxBet,
			Rounds:       req.Rounds,
			CustomParams: req.CustomParams,
		},
	}, now)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.accounts.DebitWithTx(ctx, tx, creator, m.Asset(), m.BetAmount); err != nil {
		return nil, err
	}
	if err := s.matches.CreateWithTx(ctx, tx, m); err != nil {
		return nil, err
	}
	if err := s.vaults.CreateWithTx(ctx, tx, m.ID, m.Asset()); err != nil {
		return nil, err
	}
	if err := s.vaults.DepositWithTx(ctx, tx, m.ID, creator, m.BetAmount, domain.EntryStake); err != nil {
		return nil, err
	}
	if err := s.registry.IncrementMatchesWithTx(ctx, tx, m.Kind); err != nil {
		return nil, err
	}
	if err := s.writeAudit(ctx, tx, m.ID, creator, domain.AuditActionCreate, map[string]any{
		"kind": m.Kind, "bet": m.BetAmount, "fee_bps": m.FeeBps,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	MatchesCreated.WithLabelValues(string(m.Kind)).Inc()
	logger.Info("match created", "match_id", m.ID, "kind", m.Kind, "creator", creator)
	s.publish(m, "match_created")
	return m, nil
}

func (s *MatchService) JoinMatch(ctx context.Context, caller, matchID string, commitment []byte) (*domain.Match, error) {
	var m *domain.Match
	err := s.withMatchTx(ctx, matchID, func(tx pgx.Tx, locked *domain.Match) error {
		m = locked
		now := time.Now()
		if err := game.Join(m, caller, commitment, now); err != nil {
			return err
		}
		if err := s.accounts.DebitWithTx(ctx, tx, caller, m.Asset(), m.BetAmount); err != nil {
			return err
		}
		if err := s.vaults.DepositWithTx(ctx, tx, m.ID, caller, m.BetAmount, domain.EntryStake); err != nil {
			return err
		}
		return s.writeAudit(ctx, tx, m.ID, caller, domain.AuditActionJoin, nil)
	})
	if err != nil {
		return nil, err
	}
	s.publish(m, "match_joined")
	return m, nil
}

func (s *MatchService) CommitRound(ctx context.Context, caller, matchID string, commitment []byte) (*domain.Match, error) {
	var m *domain.Match
	err := s.withMatchTx(ctx, matchID, func(tx pgx.Tx, locked *domain.Match) error {
		m = locked
		if err := game.CommitRound(m, caller, commitment, time.Now()); err != nil {
			return err
		}
		return s.writeAudit(ctx, tx, m.ID, caller, domain.AuditActionCommit, nil)
	})
	if err != nil {
		return nil, err
	}
	s.publish(m, "round_committed")
	return m, nil
}

// Reveal opens a commitment and settles the round as soon as both moves are
// in, all inside the same transaction.
func (s *MatchService) Reveal(ctx context.Context, caller, matchID string, choice byte, salt []byte, nonce uint64) (*domain.Match, error) {
	if len(salt) != game.SaltSize {
		return nil, domain.ErrInvalidCommitment
	}
	var saltArr [game.SaltSize]byte
	copy(saltArr[:], salt)

	var m *domain.Match
	err := s.withMatchTx(ctx, matchID, func(tx pgx.Tx, locked *domain.Match) error {
		m = locked
		now := time.Now()
		if err := game.Reveal(m, caller, choice, saltArr, nonce, now); err != nil {
			return err
		}
		if err := s.writeAudit(ctx, tx, m.ID, caller, domain.AuditActionReveal, nil); err != nil {
			return err
		}
		if game.BothMovesIn(m) {
			if err := game.Settle(m, now); err != nil {
				return err
			}
			return s.writeAudit(ctx, tx, m.ID, caller, domain.AuditActionSettle, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishProgress(m, "move_revealed")
	return m, nil
}

// SubmitMove records a plaintext move and settles when the round is full.
func (s *MatchService) SubmitMove(ctx context.Context, caller, matchID string, move []byte) (*domain.Match, error) {
	var m *domain.Match
	err := s.withMatchTx(ctx, matchID, func(tx pgx.Tx, locked *domain.Match) error {
		m = locked
		now := time.Now()
		if err := game.SubmitMove(m, caller, move, now); err != nil {
			return err
		}
		if err := s.writeAudit(ctx, tx, m.ID, caller, domain.AuditActionMove, nil); err != nil {
			return err
		}
		if game.BothMovesIn(m) {
			if err := game.Settle(m, now); err != nil {
				return err
			}
			return s.writeAudit(ctx, tx, m.ID, caller, domain.AuditActionSettle, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishProgress(m, "move_submitted")
	return m, nil
}

// SettleMatch settles explicitly; it fails when a move is still missing.
func (s *MatchService) SettleMatch(ctx context.Context, caller, matchID string) (*domain.Match, error) {
	var m *domain.Match
	err := s.withMatchTx(ctx, matchID, func(tx pgx.Tx, locked *domain.Match) error {
		m = locked
		if err := game.Settle(m, time.Now()); err != nil {
			return err
		}
		return s.writeAudit(ctx, tx, m.ID, caller, domain.AuditActionSettle, nil)
	})
	if err != nil {
		return nil, err
	}
	s.publishProgress(m, "match_settled")
	return m, nil
}

// ClaimWinnings pays the caller's entitlement out of the vault into their
// ledger account. The fee share moves to the collector with the first
// winning claim.
func (s *MatchService) ClaimWinnings(ctx context.Context, caller, matchID string) (*game.ClaimResult, error) {
	var res game.ClaimResult
	var m *domain.Match
	err := s.withMatchTx(ctx, matchID, func(tx pgx.Tx, locked *domain.Match) error {
		m = locked
		var err error
		res, err = game.Claim(m, caller)
		if err != nil {
			return err
		}
		if err := s.vaults.WithdrawWithTx(ctx, tx, m.ID, caller, res.Amount, res.Kind); err != nil {
			return err
		}
		if err := s.accounts.CreditWithTx(ctx, tx, caller, m.Asset(), res.Amount); err != nil {
			return err
		}
		if res.Fee > 0 {
			if err := s.vaults.WithdrawWithTx(ctx, tx, m.ID, s.feeCollector, res.Fee, domain.EntryFee); err != nil {
				return err
			}
			if err := s.accounts.CreditWithTx(ctx, tx, s.feeCollector, m.Asset(), res.Fee); err != nil {
				return err
			}
		}
		return s.writeAudit(ctx, tx, m.ID, caller, domain.AuditActionClaim, map[string]any{
			"amount": res.Amount, "fee": res.Fee, "kind": res.Kind,
		})
	})
	if err != nil {
		return nil, err
	}

	ClaimsPaid.WithLabelValues(res.Kind).Inc()
	PayoutVolume.Add(float64(res.Amount + res.Fee))
	logger.Info("claim paid", "match_id", matchID, "player", caller, "amount", res.Amount, "fee", res.Fee)
	s.publish(m, "winnings_claimed")
	return &res, nil
}

func (s *MatchService) CancelMatch(ctx context.Context, caller, matchID string) (*domain.Match, error) {
	var m *domain.Match
	err := s.withMatchTx(ctx, matchID, func(tx pgx.Tx, locked *domain.Match) error {
		m = locked
		if err := game.Cancel(m, caller, s.cancelGrace, time.Now()); err != nil {
			return err
		}
		return s.writeAudit(ctx, tx, m.ID, caller, domain.AuditActionCancel, nil)
	})
	if err != nil {
		return nil, err
	}
	MatchesSettled.WithLabelValues(string(m.Kind), "cancelled").Inc()
	s.publish(m, "match_cancelled")
	return m, nil
}

// TimeoutMatch is callable by anyone once a deadline has passed.
func (s *MatchService) TimeoutMatch(ctx context.Context, caller, matchID string) (*domain.Match, error) {
	var m *domain.Match
	err := s.withMatchTx(ctx, matchID, func(tx pgx.Tx, locked *domain.Match) error {
		m = locked
		if err := game.Timeout(m, time.Now()); err != nil {
			return err
		}
		return s.writeAudit(ctx, tx, m.ID, caller, domain.AuditActionTimeout, nil)
	})
	if err != nil {
		return nil, err
	}
	MatchesSettled.WithLabelValues(string(m.Kind), "timed_out").Inc()
	s.publish(m, "match_timed_out")
	return m, nil
}

func (s *MatchService) DisputeMatch(ctx context.Context, caller, matchID, reason string) (*domain.Match, error) {
	var m *domain.Match
	err := s.withMatchTx(ctx, matchID, func(tx pgx.Tx, locked *domain.Match) error {
		m = locked
		if err := game.Dispute(m, caller, reason, time.Now()); err != nil {
			return err
		}
		return s.writeAudit(ctx, tx, m.ID, caller, domain.AuditActionDispute, map[string]any{"reason": reason})
	})
	if err != nil {
		return nil, err
	}
	logger.Warn("match disputed", "match_id", matchID, "by", caller)
	s.publish(m, "match_disputed")
	return m, nil
}

// ResolveDispute applies the authority's ruling. Only the registry authority
// may call it.
func (s *MatchService) ResolveDispute(ctx context.Context, caller, matchID string, ruling domain.Outcome) (*domain.Match, error) {
	if caller != s.registryAuthority {
		return nil, domain.ErrUnauthorized
	}
	var m *domain.Match
	err := s.withMatchTx(ctx, matchID, func(tx pgx.Tx, locked *domain.Match) error {
		m = locked
		if err := game.ResolveDispute(m, ruling, time.Now()); err != nil {
			return err
		}
		return s.writeAudit(ctx, tx, m.ID, caller, domain.AuditActionResolveDispute, map[string]any{"ruling": ruling})
	})
	if err != nil {
		return nil, err
	}
	s.publish(m, "dispute_resolved")
	return m, nil
}

func (s *MatchService) GetMatch(ctx context.Context, id string) (*domain.Match, error) {
	return s.matches.Get(ctx, id)
}

func (s *MatchService) ListOpen(ctx context.Context, kind string, limit int) ([]*domain.Match, error) {
	return s.matches.ListOpen(ctx, kind, limit)
}

func (s *MatchService) ListByPlayer(ctx context.Context, player string, limit int) ([]*domain.Match, error) {
	return s.matches.ListByPlayer(ctx, player, limit)
}

func (s *MatchService) GetVault(ctx context.Context, matchID string) (*domain.Vault, error) {
	return s.vaults.Get(ctx, matchID)
}

func (s *MatchService) VaultEntries(ctx context.Context, matchID string) ([]*domain.VaultEntry, error) {
	return s.vaults.Entries(ctx, matchID)
}

func (s *MatchService) ListGames(ctx context.Context) ([]*domain.GameDefinition, error) {
	return s.registry.List(ctx)
}

// SetGameActive toggles a registry entry; authority only.
func (s *MatchService) SetGameActive(ctx context.Context, caller string, kind domain.GameKind, active bool) error {
	if caller != s.registryAuthority {
		return domain.ErrUnauthorized
	}
	if err := s.registry.SetActive(ctx, kind, active); err != nil {
		return err
	}
	if err := s.audit.Create(ctx, &domain.AuditLog{
		Actor:  &caller,
		Action: domain.AuditActionRegistryToggle,
		Detail: map[string]any{"kind": kind, "active": active},
	}); err != nil {
		logger.Error("registry toggle audit failed", "error", err)
	}
	return nil
}

func (s *MatchService) AuditTrail(ctx context.Context, matchID string, limit int) ([]*domain.AuditLog, error) {
	return s.audit.GetByMatch(ctx, matchID, limit)
}

// RecentAudit returns the newest entries across all matches; authority only.
func (s *MatchService) RecentAudit(ctx context.Context, caller string, limit int) ([]*domain.AuditLog, error) {
	if caller != s.registryAuthority {
		return nil, domain.ErrUnauthorized
	}
	return s.audit.GetRecent(ctx, limit)
}

// withMatchTx runs fn against the row-locked match and persists the mutated
// aggregate on success.
func (s *MatchService) withMatchTx(ctx context.Context, matchID string, fn func(pgx.Tx, *domain.Match) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	m, err := s.matches.GetForUpdate(ctx, tx, matchID)
	if err != nil {
		return err
	}
	if err := fn(tx, m); err != nil {
		return err
	}
	if err := s.matches.UpdateWithTx(ctx, tx, m); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *MatchService) writeAudit(ctx context.Context, tx pgx.Tx, matchID, actor, action string, detail map[string]any) error {
	return s.audit.CreateWithTx(ctx, tx, &domain.AuditLog{
		MatchID: &matchID,
		Actor:   &actor,
		Action:  action,
		Detail:  detail,
	})
}

func (s *MatchService) publish(m *domain.Match, event string) {
	if s.events != nil {
		s.events.Publish(m.ID, event, m)
	}
}

// publishProgress reports a move event, plus a settlement event when the
// operation finished the match.
func (s *MatchService) publishProgress(m *domain.Match, event string) {
	s.publish(m, event)
	if m.Status == domain.StatusCompleted {
		result := "draw"
		if m.Winner != nil {
			result = "decided"
		}
		MatchesSettled.WithLabelValues(string(m.Kind), result).Inc()
		s.publish(m, "match_completed")
	}
}
