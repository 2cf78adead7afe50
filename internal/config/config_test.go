package config

import "testing"

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is unset")
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/catalog")
	t.Setenv("PORT", "9090")
	t.Setenv("BASE_URL", "https://store.example.com")
	t.Setenv("RATE_LIMIT_PER_SEC", "5")
	t.Setenv("RATE_LIMIT_BURST", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port: want 9090, got %d", cfg.Port)
	}
	if cfg.BaseURL != "https://store.example.com" {
		t.Errorf("BaseURL: got %q", cfg.BaseURL)
	}
	if cfg.DatabaseURL != "postgres://u:p@db:5432/catalog" {
		t.Errorf("DatabaseURL: got %q", cfg.DatabaseURL)
	}
	if cfg.RateLimitPerSec != 5 {
		t.Errorf("RateLimitPerSec: want 5, got %v", cfg.RateLimitPerSec)
	}
	if cfg.RateLimitBurst != 10 {
		t.Errorf("RateLimitBurst: want 10, got %d", cfg.RateLimitBurst)
	}
}

func TestLoad_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/catalog")
	t.Setenv("PORT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port: want default 8080, got %d", cfg.Port)
	}
}

func TestLoadDev_DefaultsDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg := LoadDev()
	if cfg == nil {
		t.Fatal("LoadDev returned nil")
	}
	if cfg.DatabaseURL == "" {
		t.Error("expected a development DATABASE_URL default")
	}
	if cfg.Port != 8080 {
		t.Errorf("Port: want 8080, got %d", cfg.Port)
	}
}
