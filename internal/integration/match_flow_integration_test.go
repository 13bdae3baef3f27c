package integration

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"pvp_escrow/internal/config"
	"pvp_escrow/internal/domain"
	"pvp_escrow/internal/game"
	"pvp_escrow/internal/repository"
	"pvp_escrow/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

func randomKey(t *testing.T) string {
	t.Helper()
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return hex.EncodeToString(raw)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		FeeCollector:         randomKey(t),
		RegistryAuthority:    randomKey(t),
		MinBet:               1,
		MaxBet:               100_000_000,
		CancelGraceSeconds:   600,
		JoinTimeoutSeconds:   3600,
		RevealTimeoutSeconds: 7200,
		RateLimit:            1000,
		RateWindow:           60,
	}
}

func fundPlayer(t *testing.T, accounts *repository.AccountRepository, key string, amount int64) {
	t.Helper()
	ctx := context.Background()
	if err := accounts.Ensure(ctx, key, domain.NativeAsset); err != nil {
		t.Fatalf("ensure %s: %v", key[:8], err)
	}
	if err := accounts.Credit(ctx, key, domain.NativeAsset, amount); err != nil {
		t.Fatalf("credit %s: %v", key[:8], err)
	}
}

func TestCommittedMatchFlow(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	dbp, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer dbp.Close()

	applyMigrations(t, dbp)

	cfg := testConfig(t)
	svc := service.NewMatchService(dbp, cfg, nil)
	accounts := repository.NewAccountRepository(dbp)
	ctx := context.Background()

	keyA := randomKey(t)
	keyB := randomKey(t)
	fundPlayer(t, accounts, keyA, 1_000_000)
	fundPlayer(t, accounts, keyB, 1_000_000)

	keyABytes, err := game.PlayerKeyBytes(keyA)
	if err != nil {
		t.Fatalf("key A: %v", err)
	}
	keyBBytes, err := game.PlayerKeyBytes(keyB)
	if err != nil {
		t.Fatalf("key B: %v", err)
	}

	var saltA, saltB [32]byte
	saltA[0] = 0x11
	saltB[0] = 0x22
	commitA := game.ComputeCommitment(game.ChoiceRock, saltA, keyABytes, 1)
	commitB := game.ComputeCommitment(game.ChoicePaper, saltB, keyBBytes, 2)

	m, err := svc.CreateMatch(ctx, keyA, service.CreateMatchRequest{
		Kind:       domain.GameRPS,
		BetAmount:  100_000,
		FeeBps:     250,
		Commitment: commitA[:],
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// stake escrowed on create
	balA, err := accounts.GetBalance(ctx, keyA, domain.NativeAsset)
	if err != nil {
		t.Fatalf("balance A: %v", err)
	}
	if balA != 900_000 {
		t.Fatalf("creator balance after create = %d, want 900000", balA)
	}

	if _, err := svc.JoinMatch(ctx, keyB, m.ID, commitB[:]); err != nil {
		t.Fatalf("join: %v", err)
	}

	if _, err := svc.Reveal(ctx, keyA, m.ID, game.ChoiceRock, saltA[:], 1); err != nil {
		t.Fatalf("reveal A: %v", err)
	}
	got, err := svc.Reveal(ctx, keyB, m.ID, game.ChoicePaper, saltB[:], 2)
	if err != nil {
		t.Fatalf("reveal B: %v", err)
	}

	if got.Status != domain.StatusCompleted {
		t.Fatalf("status after both reveals = %s, want completed", got.Status)
	}
	if got.Winner == nil || *got.Winner != keyB {
		t.Fatalf("winner = %v, want opponent", got.Winner)
	}

	res, err := svc.ClaimWinnings(ctx, keyB, m.ID)
	if err != nil {
		t.Fatalf("claim B: %v", err)
	}
	if res.Amount != 195_000 || res.Fee != 5_000 {
		t.Fatalf("claim = %d fee %d, want 195000 fee 5000", res.Amount, res.Fee)
	}

	if _, err := svc.ClaimWinnings(ctx, keyA, m.ID); !errors.Is(err, domain.ErrNothingToClaim) {
		t.Fatalf("loser claim err = %v, want ErrNothingToClaim", err)
	}

	// vault drained, every movement ledgered
	v, err := svc.GetVault(ctx, m.ID)
	if err != nil {
		t.Fatalf("get vault: %v", err)
	}
	if v.Balance != 0 {
		t.Fatalf("vault balance after claims = %d, want 0", v.Balance)
	}
	entries, err := svc.VaultEntries(ctx, m.ID)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	var sum int64
	for _, e := range entries {
		sum += e.Amount
	}
	if sum != 0 {
		t.Fatalf("vault entries sum = %d, want 0", sum)
	}

	balB, err := accounts.GetBalance(ctx, keyB, domain.NativeAsset)
	if err != nil {
		t.Fatalf("balance B: %v", err)
	}
	if balB != 1_095_000 {
		t.Fatalf("winner balance = %d, want 1095000", balB)
	}
	feeBal, err := accounts.GetBalance(ctx, cfg.FeeCollector, domain.NativeAsset)
	if err != nil {
		t.Fatalf("fee balance: %v", err)
	}
	if feeBal != 5_000 {
		t.Fatalf("fee collector balance = %d, want 5000", feeBal)
	}

	// history recorded
	trail, err := svc.AuditTrail(ctx, m.ID, 100)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if len(trail) == 0 {
		t.Fatal("expected audit entries, got 0")
	}
}

func TestPlaintextDiceFlowAndRefunds(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	dbp, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer dbp.Close()

	applyMigrations(t, dbp)

	cfg := testConfig(t)
	svc := service.NewMatchService(dbp, cfg, nil)
	accounts := repository.NewAccountRepository(dbp)
	ctx := context.Background()

	keyA := randomKey(t)
	keyB := randomKey(t)
	fundPlayer(t, accounts, keyA, 10_000)
	fundPlayer(t, accounts, keyB, 10_000)

	// a caller-supplied ceiling cannot lift the service-wide one
	if _, err := svc.CreateMatch(ctx, keyA, service.CreateMatchRequest{
		Kind:      domain.GameDice,
		BetAmount: cfg.MaxBet + 1,
		MaxBet:    math.MaxInt64,
	}); !errors.Is(err, domain.ErrBetTooLarge) {
		t.Fatalf("oversized bet err = %v, want ErrBetTooLarge", err)
	}

	m, err := svc.CreateMatch(ctx, keyA, service.CreateMatchRequest{
		Kind:      domain.GameDice,
		BetAmount: 1_000,
		FeeBps:    250,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.JoinMatch(ctx, keyB, m.ID, nil); err != nil {
		t.Fatalf("join: %v", err)
	}

	// equal sums draw the match
	if _, err := svc.SubmitMove(ctx, keyA, m.ID, []byte{3, 4}); err != nil {
		t.Fatalf("move A: %v", err)
	}
	got, err := svc.SubmitMove(ctx, keyB, m.ID, []byte{5, 2})
	if err != nil {
		t.Fatalf("move B: %v", err)
	}
	if got.Status != domain.StatusCompleted || got.Winner != nil {
		t.Fatalf("want completed draw, got status=%s winner=%v", got.Status, got.Winner)
	}

	// both sides refund their own stake, no fee on a draw
	for _, key := range []string{keyA, keyB} {
		res, err := svc.ClaimWinnings(ctx, key, m.ID)
		if err != nil {
			t.Fatalf("claim %s: %v", key[:8], err)
		}
		if res.Amount != 1_000 || res.Fee != 0 || res.Kind != domain.EntryRefund {
			t.Fatalf("claim %s = %+v, want 1000 refund", key[:8], res)
		}
	}

	feeBal, err := accounts.GetBalance(ctx, cfg.FeeCollector, domain.NativeAsset)
	if err != nil {
		t.Fatalf("fee balance: %v", err)
	}
	if feeBal != 0 {
		t.Fatalf("fee collector balance on draw = %d, want 0", feeBal)
	}
}
