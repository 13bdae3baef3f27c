package config

import (
	"os"
	"strconv"

	"pvp_escrow/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	// FeeCollector receives the fee cut of winner-take-all payouts.
	// RegistryAuthority alone resolves disputes and toggles game kinds.
	// Both are 32-byte hex player keys.
	FeeCollector      string
	RegistryAuthority string

	// Bet limits applied when a match config leaves them unset
	MinBet int64
	MaxBet int64

	// Seconds a started match must sit without progress before either
	// participant may cancel it
	CancelGraceSeconds int

	// Default deadlines for matches created without explicit ones
	JoinTimeoutSeconds   int
	RevealTimeoutSeconds int

	// Rate limiting
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RateLimit     int
	RateWindow    int
}

// Load reads the config from env, with .env support for local runs.
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	feeCollector := os.Getenv("FEE_COLLECTOR")
	if feeCollector == "" {
		logger.Fatal("FEE_COLLECTOR is not set")
	}

	registryAuthority := os.Getenv("REGISTRY_AUTHORITY")
	if registryAuthority == "" {
		logger.Fatal("REGISTRY_AUTHORITY is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		AppPort:              port,
		DatabaseURL:          dbURL,
		JWTSecret:            jwtSecret,
		FeeCollector:         feeCollector,
		RegistryAuthority:    registryAuthority,
		MinBet:               envInt64("MIN_BET", 10),
		MaxBet:               envInt64("MAX_BET", 100_000_000),
		CancelGraceSeconds:   envInt("CANCEL_GRACE_SECONDS", 600),
		JoinTimeoutSeconds:   envInt("JOIN_TIMEOUT_SECONDS", 3600),
		RevealTimeoutSeconds: envInt("REVEAL_TIMEOUT_SECONDS", 7200),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              envInt("REDIS_DB", 0),
		RateLimit:            envInt("RATE_LIMIT", 60),
		RateWindow:           envInt("RATE_WINDOW", 60),
	}
}

func envInt64(name string, def int64) int64 {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
