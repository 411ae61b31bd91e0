package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "LLM_PROVIDER", "EMAIL_PROVIDER", "REVEAL_DELAY", "CORS_ALLOWED_ORIGINS", "BEDROCK_MODEL_ID", "ARCHIVE_BUCKET"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.LLMProvider != "auto" {
		t.Fatalf("expected auto llm provider, got %s", cfg.LLMProvider)
	}
	if cfg.EmailProvider != "stub" {
		t.Fatalf("expected stub email provider, got %s", cfg.EmailProvider)
	}
	if cfg.RevealDelay != 30*time.Millisecond {
		t.Fatalf("expected default reveal delay, got %s", cfg.RevealDelay)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("expected wildcard cors default, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.UsesAWS() {
		t.Fatalf("expected no AWS usage by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("RATE_LIMIT_BURST", "3")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("LLM_PROVIDER", " Gemini ")
	t.Setenv("EMAIL_PROVIDER", "SES")
	t.Setenv("CRISIS_KEYWORDS", "hopeless, give up")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.RateLimitBurst != 3 || cfg.RateLimitRPS != 0.5 {
		t.Fatalf("expected rate limit overrides, got %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.JWTTTL != 2*time.Hour {
		t.Fatalf("expected jwt ttl override, got %s", cfg.JWTTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected normalized llm provider, got %q", cfg.LLMProvider)
	}
	if !cfg.UsesAWS() {
		t.Fatalf("expected SES email provider to require AWS")
	}
	if len(cfg.CrisisKeywords) != 2 || cfg.CrisisKeywords[1] != "give up" {
		t.Fatalf("unexpected crisis keywords %v", cfg.CrisisKeywords)
	}
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "lots")
	t.Setenv("REVEAL_DELAY", "soon")
	t.Setenv("REDIS_TLS", "maybe")
	cfg := Load()
	if cfg.RateLimitBurst != 10 {
		t.Fatalf("expected default burst, got %d", cfg.RateLimitBurst)
	}
	if cfg.RevealDelay != 30*time.Millisecond {
		t.Fatalf("expected default reveal delay, got %s", cfg.RevealDelay)
	}
	if cfg.RedisTLS {
		t.Fatalf("expected redis tls false")
	}
}
