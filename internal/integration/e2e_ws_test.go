package integration

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"

	"pvp_escrow/internal/domain"
	httpserver "pvp_escrow/internal/http"
	"pvp_escrow/internal/repository"
	"pvp_escrow/internal/service"
)

func TestE2E_WSMatchFeed(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	os.Setenv("JWT_SECRET", "test-secret")

	dbp, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer dbp.Close()

	applyMigrations(t, dbp)

	cfg := testConfig(t)
	accounts := repository.NewAccountRepository(dbp)

	keyA := randomKey(t)
	keyB := randomKey(t)
	fundPlayer(t, accounts, keyA, 100_000)
	fundPlayer(t, accounts, keyB, 100_000)

	service.InitJWT()
	tokenA, err := service.GenerateJWT(keyA)
	if err != nil {
		t.Fatalf("gen token A: %v", err)
	}
	tokenB, err := service.GenerateJWT(keyB)
	if err != nil {
		t.Fatalf("gen token B: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.Default()
	httpserver.RegisterRoutes(r, dbp, cfg, "test")
	ts := httptest.NewServer(r)
	defer ts.Close()

	postJSON := func(path, token string, body any, out any) {
		t.Helper()
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal %s: %v", path, err)
		}
		req, err := http.NewRequest(http.MethodPost, ts.URL+path, bytes.NewReader(raw))
		if err != nil {
			t.Fatalf("request %s: %v", path, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("post %s: %v", path, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			var msg map[string]any
			_ = json.NewDecoder(resp.Body).Decode(&msg)
			t.Fatalf("post %s: status %d body %v", path, resp.StatusCode, msg)
		}
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				t.Fatalf("decode %s: %v", path, err)
			}
		}
	}

	var match struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	postJSON("/api/v1/matches", tokenA, map[string]any{
		"kind":       "dice",
		"bet_amount": 1000,
		"fee_bps":    100,
	}, &match)
	if match.ID == "" {
		t.Fatal("create returned no match id")
	}

	// subscribe to the feed before any further progress
	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws/matches/" + match.ID + "?token=" + tokenA
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	events := make(chan map[string]any, 16)
	go func() {
		defer close(events)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var obj map[string]any
			if json.Unmarshal(msg, &obj) == nil {
				events <- obj
			}
		}
	}()

	postJSON("/api/v1/matches/"+match.ID+"/join", tokenB, map[string]any{}, nil)
	postJSON("/api/v1/matches/"+match.ID+"/move", tokenA, map[string]any{
		"move": hex.EncodeToString([]byte{6, 6}),
	}, nil)
	postJSON("/api/v1/matches/"+match.ID+"/move", tokenB, map[string]any{
		"move": hex.EncodeToString([]byte{1, 2}),
	}, &match)

	if match.Status != string(domain.StatusCompleted) {
		t.Fatalf("status after moves = %s, want completed", match.Status)
	}

	sawCompleted := false
	deadline := time.After(5 * time.Second)
	for !sawCompleted {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatal("ws feed closed before completion event")
			}
			if ev["type"] == "match_completed" {
				sawCompleted = true
			}
		case <-deadline:
			t.Fatal("timeout waiting for match_completed event")
		}
	}

	// winner claims through the API as well
	var claim struct {
		Amount int64  `json:"amount"`
		Kind   string `json:"kind"`
		Fee    int64  `json:"fee"`
	}
	postJSON("/api/v1/matches/"+match.ID+"/claim", tokenA, map[string]any{}, &claim)
	if claim.Kind != domain.EntryPayout || claim.Amount != 1980 || claim.Fee != 20 {
		t.Fatalf("claim = %+v, want payout 1980 fee 20", claim)
	}
}
