package config

import (
	"testing"
	"time"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	if got := getEnv("TEST_STRING", "default"); got != "value" {
		t.Fatalf("expected value, got %q", got)
	}
	if got := getEnv("MISSING_STRING", "default"); got != "default" {
		t.Fatalf("expected default, got %q", got)
	}

	t.Setenv("TEST_DURATION", "30")
	if got := getDurationEnv("TEST_DURATION", 5*time.Minute); got != 30*time.Second {
		t.Fatalf("expected 30s, got %v", got)
	}
	t.Setenv("TEST_DURATION", "invalid")
	if got := getDurationEnv("TEST_DURATION", 5*time.Minute); got != 5*time.Minute {
		t.Fatalf("expected default duration, got %v", got)
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "")
	t.Setenv("JWT_REFRESH_TOKEN_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when MYSQL_DSN is missing")
	}

	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/blog")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_ACCESS_TOKEN_SECRET is missing")
	}

	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "access-secret")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_REFRESH_TOKEN_SECRET is missing")
	}

	t.Setenv("JWT_REFRESH_TOKEN_SECRET", "refresh-secret")
	t.Setenv("JWT_ACCESS_TOKEN_EXPIRATION_TIME", "900")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.JWTAccessTokenTTL != 900*time.Second {
		t.Fatalf("expected 900s access TTL, got %v", cfg.JWTAccessTokenTTL)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.HTTPPort)
	}
}
