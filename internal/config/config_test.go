package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("ENV", "")
		t.Setenv("CORS_ALLOW_ORIGINS", "")
		t.Setenv("SEED_DEFAULT_CATEGORIES", "")
		t.Setenv("JWT_EXPIRES_IN", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Env != "development" {
			t.Errorf("expected development env, got %q", cfg.Env)
		}
		if len(cfg.CORSAllowOrigins) != 4 {
			t.Errorf("expected 4 default origins, got %v", cfg.CORSAllowOrigins)
		}
		if !cfg.SeedDefaultCategories {
			t.Error("expected seeding outside production")
		}
		if cfg.JWTExpirationDur != 24*time.Hour {
			t.Errorf("expected 24h expiry, got %s", cfg.JWTExpirationDur)
		}
	})

	t.Run("production disables seeding", func(t *testing.T) {
		t.Setenv("ENV", "production")
		t.Setenv("SEED_DEFAULT_CATEGORIES", "")

		cfg, _ := Load()
		if cfg.SeedDefaultCategories {
			t.Error("expected no seeding in production")
		}
		if !cfg.IsProduction() {
			t.Error("expected IsProduction")
		}
	})

	t.Run("invalid duration falls back", func(t *testing.T) {
		t.Setenv("REQUEST_TIMEOUT", "soon")

		cfg, _ := Load()
		if cfg.RequestTimeout != 30*time.Second {
			t.Errorf("expected 30s fallback, got %s", cfg.RequestTimeout)
		}
	})

	t.Run("api url trailing slash trimmed", func(t *testing.T) {
		t.Setenv("BUDGETBUDDY_API_URL", "http://api.example.com/")

		cfg, _ := Load()
		if cfg.APIURL != "http://api.example.com" {
			t.Errorf("unexpected api url %q", cfg.APIURL)
		}
	})
}
