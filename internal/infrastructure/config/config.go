// Package config holds the configuration of the development admin API
// served by cmd/devapi.
package config

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"DEVAPI_PORT, default=8081"`
	Env      string `env:"ENV,         default=development"`
	LogLevel string `env:"LOG_LEVEL,   default=info"`

	Auth AuthConfig
	Seed SeedConfig
}

type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET,        default=dev-secret-change-me"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,  default=15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL, default=24h"`
}

// SeedConfig is the administrator account created at startup.
type SeedConfig struct {
	AdminUsername string `env:"DEVAPI_ADMIN_USERNAME, default=admin"`
	AdminPassword string `env:"DEVAPI_ADMIN_PASSWORD, default=admin123"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(logger zerolog.Logger) *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.Auth.JWTSecret == "dev-secret-change-me" {
		logger.Warn().Msg("JWT_SECRET not set, using the development default")
	}
	return &cfg
}
