package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Env != "development" {
		t.Errorf("expected env development, got %s", cfg.Env)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.Auth.SessionTTL != time.Hour {
		t.Errorf("expected session TTL 1h, got %s", cfg.Auth.SessionTTL)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Errorf("expected bcrypt cost 10, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.RateLimit.Max != 5 {
		t.Errorf("expected rate limit max 5, got %d", cfg.RateLimit.Max)
	}
	if cfg.RateLimit.Window != time.Minute {
		t.Errorf("expected rate limit window 1m, got %s", cfg.RateLimit.Window)
	}
	if cfg.RateLimit.Backend != "memory" {
		t.Errorf("expected memory backend, got %s", cfg.RateLimit.Backend)
	}
	// Dev-only fallback secret must be present so local runs work.
	if cfg.Auth.SecretKey == "" {
		t.Error("expected dev fallback secret key")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("RATE_LIMIT_MAX", "3")
	t.Setenv("RATE_LIMIT_BACKEND", "redis")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://staging.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.Auth.SessionTTL != 30*time.Minute {
		t.Errorf("expected session TTL 30m, got %s", cfg.Auth.SessionTTL)
	}
	if cfg.RateLimit.Max != 3 {
		t.Errorf("expected rate limit max 3, got %d", cfg.RateLimit.Max)
	}
	if cfg.RateLimit.Backend != "redis" {
		t.Errorf("expected redis backend, got %s", cfg.RateLimit.Backend)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://staging.example.com" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing SECRET_KEY in production")
	}
	if !strings.Contains(err.Error(), "SECRET_KEY") {
		t.Errorf("expected SECRET_KEY error, got: %v", err)
	}
}

func TestLoad_ProductionShortSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SECRET_KEY", "too-short")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for short SECRET_KEY in production")
	}
}

func TestLoad_InvalidRateLimitBackend(t *testing.T) {
	t.Setenv("RATE_LIMIT_BACKEND", "memcached")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid rate limit backend")
	}
}

func TestDSN_BuildsFromFields(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		User:     "svc",
		Password: "p@ss/word",
		Name:     "gatehouse",
	}

	dsn := d.DSN()
	if !strings.Contains(dsn, "db.internal:3306") {
		t.Errorf("expected default port appended, got %s", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("expected parseTime=true, got %s", dsn)
	}
}

func TestDSN_OverrideWins(t *testing.T) {
	d := DatabaseConfig{
		Host:        "ignored",
		dsnOverride: "svc:pw@tcp(other:3307)/db?parseTime=true",
	}
	if d.DSN() != "svc:pw@tcp(other:3307)/db?parseTime=true" {
		t.Errorf("expected override DSN, got %s", d.DSN())
	}
}
