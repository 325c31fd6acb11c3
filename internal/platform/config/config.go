package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Addr        string `env:"HONEYSHOP_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"HONEYSHOP_METRICS_ADDR" envDefault:":9091"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogsDir     string `env:"HONEYSHOP_LOGS_DIR" envDefault:"logs"`

	// Empty PostgresURL / RedisAddr fall back to in-memory stores so the
	// honeypot can run self-contained.
	PostgresURL string `env:"POSTGRES_URL"`
	RedisAddr   string `env:"REDIS_ADDR"`

	JWTSigningKey string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"720h"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	GuestCartTTL     time.Duration `env:"GUEST_CART_TTL" envDefault:"720h"`
	LockoutThreshold int64         `env:"AUTH_LOCKOUT_THRESHOLD" envDefault:"5"`
	LockoutWindow    time.Duration `env:"AUTH_LOCKOUT_WINDOW" envDefault:"15m"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
