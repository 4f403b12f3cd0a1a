package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.API.BaseURL != "http://localhost:8081" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.API.RequestTimeout != 10*time.Second || cfg.Session.IdleTTL != 30*time.Minute {
		t.Errorf("unexpected duration defaults: %+v", cfg)
	}
	if cfg.Session.TokenStore != TokenStoreRedis || cfg.Redis.KeyPrefix != "dashboard" {
		t.Errorf("unexpected store defaults: %+v", cfg)
	}
	if cfg.Mongo.URI != "" {
		t.Errorf("mongo must be disabled by default, got %q", cfg.Mongo.URI)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"API_BASE_URL":     "https://admin.example.com",
		"TOKEN_STORE":      "memory",
		"SESSION_IDLE_TTL": "5m",
		"AUDIT_WORKERS":    "2",
		"ENV":              "production",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "https://admin.example.com" || cfg.Session.TokenStore != TokenStoreMemory {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Session.IdleTTL != 5*time.Minute || cfg.Audit.Workers != 2 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if !cfg.IsProduction() {
		t.Errorf("expected production")
	}
}

func TestLoadFrom_RejectsUnknownTokenStore(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{"TOKEN_STORE": "etcd"}))
	if err == nil {
		t.Fatalf("expected validation error")
	}
}
