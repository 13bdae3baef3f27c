package http

import (
	"time"

	"pvp_escrow/internal/config"
	"pvp_escrow/internal/http/handlers"
	"pvp_escrow/internal/http/middleware"
	"pvp_escrow/internal/service"
	"pvp_escrow/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, version string) {
	hub := ws.NewHub()
	matchService := service.NewMatchService(db, cfg, hub)
	h := handlers.NewHandler(db, matchService)
	healthHandler := handlers.NewHealthHandler(db, version)

	// Health checks and metrics (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiWindow := time.Duration(cfg.RateWindow) * time.Second
	opRL := middleware.PlayerRateLimit(cfg.RateLimit, apiWindow)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.RateLimit, apiWindow))

	// Auth is unauthenticated, so it gets an extra in-memory guard that
	// works even without Redis
	v1.POST("/auth", middleware.SimpleRateLimit(cfg.RateLimit, apiWindow), h.Auth)

	// Player account
	v1.GET("/me", middleware.JWT(), h.Me)
	v1.POST("/me/deposit", middleware.JWT(), h.Deposit)
	v1.GET("/me/matches", middleware.JWT(), h.MyMatches)

	// Match lifecycle; every mutation is per-player rate limited
	v1.POST("/matches", middleware.JWT(), opRL, h.CreateMatch)
	v1.GET("/matches", h.ListOpenMatches)
	v1.GET("/matches/:id", h.GetMatch)
	v1.GET("/matches/:id/vault", h.GetVault)
	v1.GET("/matches/:id/audit", middleware.JWT(), h.MatchAudit)
	v1.POST("/matches/:id/join", middleware.JWT(), opRL, h.JoinMatch)
	v1.POST("/matches/:id/commit", middleware.JWT(), opRL, h.CommitRound)
	v1.POST("/matches/:id/reveal", middleware.JWT(), opRL, h.Reveal)
	v1.POST("/matches/:id/move", middleware.JWT(), opRL, h.SubmitMove)
	v1.POST("/matches/:id/settle", middleware.JWT(), opRL, h.SettleMatch)
	v1.POST("/matches/:id/claim", middleware.JWT(), opRL, h.ClaimWinnings)
	v1.POST("/matches/:id/cancel", middleware.JWT(), opRL, h.CancelMatch)
	v1.POST("/matches/:id/timeout", middleware.JWT(), opRL, h.TimeoutMatch)
	v1.POST("/matches/:id/dispute", middleware.JWT(), opRL, h.DisputeMatch)
	v1.POST("/matches/:id/dispute/resolve", middleware.JWT(), h.ResolveDispute)

	// Game registry
	v1.GET("/registry/games", h.ListGames)
	v1.POST("/registry/games/:kind/active", middleware.JWT(), h.SetGameActive)
	v1.GET("/audit/recent", middleware.JWT(), h.RecentAudit)

	// Per-match event feed
	r.GET("/ws/matches/:id", ws.HandleWS(hub))
}
