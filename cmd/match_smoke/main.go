package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"pvp_escrow/internal/db"
	"pvp_escrow/internal/domain"
	"pvp_escrow/internal/repository"
	"pvp_escrow/internal/service"
)

// Drives a full plaintext dice match through the HTTP API against a running
// local server, listening on the per-match websocket feed along the way.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://127.0.0.1:%s/api/v1", port)

	pool := db.Connect(dsn)
	defer pool.Close()

	keyA := strings.Repeat("aa", 32)
	keyB := strings.Repeat("bb", 32)

	accounts := repository.NewAccountRepository(pool)
	ctx := context.Background()
	for _, key := range []string{keyA, keyB} {
		if err := accounts.Ensure(ctx, key, domain.NativeAsset); err != nil {
			log.Fatalf("ensure %s: %v", key[:8], err)
		}
		if err := accounts.Credit(ctx, key, domain.NativeAsset, 100_000); err != nil {
			log.Fatalf("credit %s: %v", key[:8], err)
		}
	}

	service.InitJWT()
	tokenA, err := service.GenerateJWT(keyA)
	if err != nil {
		log.Fatalf("gen token A: %v", err)
	}
	tokenB, err := service.GenerateJWT(keyB)
	if err != nil {
		log.Fatalf("gen token B: %v", err)
	}

	// create a dice match as A
	var match struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Winner string `json:"winner"`
	}
	post(base+"/matches", tokenA, map[string]any{
		"kind":       "dice",
		"bet_amount": 1000,
		"fee_bps":    250,
	}, &match)
	log.Printf("created match id=%s", match.ID)

	// 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	wsURL := fmt.Sprintf("ws://127.0.0.1:%s/ws/matches/%s?token=%s", port, match.ID, tokenA)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			log.Printf("ws event: %s", string(msg))
			var obj map[string]any
			_ = json.Unmarshal(msg, &obj)
			if t, ok := obj["type"].(string); ok && t == "match_completed" {
				return
			}
		}
	}()

	post(base+"/matches/"+match.ID+"/join", tokenB, map[string]any{}, nil)
	log.Println("B joined")

	// two dice each; reveal-free plaintext submission settles on the second move
	post(base+"/matches/"+match.ID+"/move", tokenA, map[string]any{
		"move": hex.EncodeToString([]byte{6, 5}),
	}, nil)
	post(base+"/matches/"+match.ID+"/move", tokenB, map[string]any{
		"move": hex.EncodeToString([]byte{2, 3}),
	}, &match)
	log.Printf("settled status=%s winner=%s", match.Status, match.Winner)

	var claim struct {
		Amount int64  `json:"amount"`
		Kind   string `json:"kind"`
		Fee    int64  `json:"fee"`
	}
	post(base+"/matches/"+match.ID+"/claim", tokenA, map[string]any{}, &claim)
	log.Printf("A claimed amount=%d kind=%s fee=%d", claim.Amount, claim.Kind, claim.Fee)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Println("ws feed timed out")
	}

	log.Println("smoke test finished")
}

func post(url, token string, body any, out any) {
	raw, err := json.Marshal(body)
	if err != nil {
		log.Fatalf("marshal %s: %v", url, err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		log.Fatalf("request %s: %v", url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var msg map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		log.Fatalf("post %s: status %d body %v", url, resp.StatusCode, msg)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatalf("decode %s: %v", url, err)
		}
	}
}
