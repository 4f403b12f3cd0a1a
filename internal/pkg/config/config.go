package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Token store backends.
const (
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
)

// Config is the dashboard BFF configuration.
type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	Mongo   MongoConfig
	Audit   AuditConfig
}

type APIConfig struct {
	BaseURL        string        `env:"API_BASE_URL,        default=http://localhost:8081"`
	RequestTimeout time.Duration `env:"API_REQUEST_TIMEOUT, default=10s"`
}

type SessionConfig struct {
	Cookie       string        `env:"SESSION_COOKIE,        default=dashboard_sid"`
	SecureCookie bool          `env:"SESSION_COOKIE_SECURE, default=false"`
	IdleTTL      time.Duration `env:"SESSION_IDLE_TTL,      default=30m"`
	Max          int           `env:"SESSION_MAX,           default=10000"`
	TokenStore   string        `env:"TOKEN_STORE,           default=redis"`
}

type RedisConfig struct {
	Addr      string        `env:"REDIS_ADDR,       default=localhost:6379"`
	Password  string        `env:"REDIS_PASSWORD"`
	DB        int           `env:"REDIS_DB,         default=0"`
	KeyPrefix string        `env:"REDIS_KEY_PREFIX, default=dashboard"`
	TokenTTL  time.Duration `env:"REDIS_TOKEN_TTL,  default=168h"`
}

// MongoConfig is optional: with an empty URI the audit trail goes to the log only.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=admin_dashboard"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration from lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.TokenStore {
	case TokenStoreRedis, TokenStoreMemory:
	default:
		return fmt.Errorf("TOKEN_STORE must be %q or %q, got %q", TokenStoreRedis, TokenStoreMemory, c.Session.TokenStore)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL must be set")
	}
	if c.Session.Cookie == "" {
		return fmt.Errorf("SESSION_COOKIE must not be empty")
	}
	return nil
}
