package main

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is built once at startup and passed to whatever needs it; nothing
// reads the environment after loadConfig returns.
type Config struct {
	DatabaseDSN    string `env:"DB_DSN"`
	AutoMigrate    bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	SecretKey      string `env:"SECRET_KEY"`
	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`

	AccessTokenMinutes int `env:"ACCESS_TOKEN_TTL_MINUTES" envDefault:"30"`
	RefreshTokenDays   int `env:"REFRESH_TOKEN_TTL_DAYS" envDefault:"30"`

	CookieDomain string `env:"COOKIE_DOMAIN"`
	// Production switches cookies to Secure + SameSite=None (cross-site
	// frontend over HTTPS); outside production they stay Lax so local HTTP
	// development works.
	Production bool `env:"PRODUCTION" envDefault:"false"`

	Port        int      `env:"PORT" envDefault:"8081"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenMinutes) * time.Minute
}

func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenDays) * 24 * time.Hour
}

// loadConfig overlays ./.env onto the environment (without overriding vars
// already set) and parses the config struct from it.
func loadConfig() (Config, error) {
	_ = godotenv.Load() // missing .env is fine

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.DatabaseDSN == "" {
		return Config{}, fmt.Errorf("DB_DSN is not set; a Postgres DSN is required")
	}
	if cfg.SecretKey == "" {
		log.Println("SECRET_KEY not set, using insecure development fallback")
		cfg.SecretKey = "dev-insecure-secret-change"
	}
	return cfg, nil
}
