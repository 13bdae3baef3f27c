package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"log"
	"os"

	"pvp_escrow/internal/db"
	"pvp_escrow/internal/domain"
	"pvp_escrow/internal/repository"
	"pvp_escrow/internal/service"
)

// Seeds a funded player account and prints its key plus a JWT for manual
// testing against a local server.
func main() {
	keyArg := flag.String("key", "", "player key (64 hex chars); random if empty")
	amount := flag.Int64("amount", 1_000_000, "initial balance to credit")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	playerKey := *keyArg
	if playerKey == "" {
		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			log.Fatalf("generate key: %v", err)
		}
		playerKey = hex.EncodeToString(raw)
	}
	if len(playerKey) != 64 {
		log.Fatalf("player key must be 64 hex chars, got %d", len(playerKey))
	}
	if _, err := hex.DecodeString(playerKey); err != nil {
		log.Fatalf("player key is not valid hex: %v", err)
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	accounts := repository.NewAccountRepository(pool)
	ctx := context.Background()

	if err := accounts.Ensure(ctx, playerKey, domain.NativeAsset); err != nil {
		log.Fatalf("ensure account: %v", err)
	}
	if *amount > 0 {
		if err := accounts.Credit(ctx, playerKey, domain.NativeAsset, *amount); err != nil {
			log.Fatalf("credit account: %v", err)
		}
	}

	balance, err := accounts.GetBalance(ctx, playerKey, domain.NativeAsset)
	if err != nil {
		log.Fatalf("read balance: %v", err)
	}
	log.Printf("player_key=%s balance=%d\n", playerKey, balance)

	service.InitJWT()
	token, err := service.GenerateJWT(playerKey)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
