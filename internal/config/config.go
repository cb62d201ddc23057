package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerPort  string
	DatabaseURL string
	RedisURL    string

	// Secrets. MasterSecret seeds per-device signing keys, TokenSecret
	// signs device tokens, JWTSecret signs operator access tokens. They
	// must be independent; absence of any is a fatal configuration
	// error, never a runtime one.
	MasterSecret string
	TokenSecret  string
	JWTSecret    string

	// AdminPasswordHash is the bcrypt hash the operator password is
	// checked against.
	AdminPasswordHash string

	SignatureWindow    time.Duration
	RateLimitPerMinute int
	JWTExpiry          time.Duration

	ParserURL   string
	ParserModel string
}

func LoadConfig() (*Config, error) {
	windowMinutes, err := strconv.Atoi(getEnv("SIGNATURE_WINDOW_MINUTES", "5"))
	if err != nil || windowMinutes <= 0 {
		return nil, errors.New("invalid SIGNATURE_WINDOW_MINUTES")
	}

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "60"))
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid RATE_LIMIT_PER_MINUTE")
	}

	expiry, err := time.ParseDuration(getEnv("JWT_EXPIRY", "24h"))
	if err != nil {
		return nil, errors.New("invalid JWT_EXPIRY format")
	}

	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		MasterSecret:       os.Getenv("MASTER_SECRET"),
		TokenSecret:        os.Getenv("TOKEN_SECRET"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		AdminPasswordHash:  os.Getenv("ADMIN_PASSWORD_HASH"),
		SignatureWindow:    time.Duration(windowMinutes) * time.Minute,
		RateLimitPerMinute: rateLimit,
		JWTExpiry:          expiry,
		ParserURL:          os.Getenv("PARSER_URL"),
		ParserModel:        getEnv("PARSER_MODEL", "default"),
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.MasterSecret == "" {
		return nil, errors.New("MASTER_SECRET is required")
	}
	if cfg.TokenSecret == "" {
		return nil, errors.New("TOKEN_SECRET is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.AdminPasswordHash == "" {
		return nil, errors.New("ADMIN_PASSWORD_HASH is required")
	}
	if cfg.ParserURL == "" {
		return nil, errors.New("PARSER_URL is required")
	}

	return cfg, nil
}

// Helper: get env with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
