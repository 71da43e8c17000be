package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DEFAULT_TENANT_ID", "")
	t.Setenv("TRANSACTION_NUMBER_PREFIX", "")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("port = %q, want 8080", cfg.Port)
	}
	if cfg.SequencePrefix != "ELADAS" {
		t.Fatalf("prefix = %q, want ELADAS", cfg.SequencePrefix)
	}
	if cfg.AccessTokenTTLMinutes != 480 {
		t.Fatalf("token ttl = %d, want 480", cfg.AccessTokenTTLMinutes)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("address = %q, want :8080", cfg.Address())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TRANSACTION_NUMBER_PREFIX", "SALE")
	t.Setenv("CARD_GATEWAY_URL", "https://gateway.example.com/")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "bogus")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("port = %q, want 9090", cfg.Port)
	}
	if cfg.SequencePrefix != "SALE" {
		t.Fatalf("prefix = %q, want SALE", cfg.SequencePrefix)
	}
	if cfg.GatewayBaseURL != "https://gateway.example.com" {
		t.Fatalf("gateway url = %q, trailing slash should be trimmed", cfg.GatewayBaseURL)
	}
	if cfg.AccessTokenTTLMinutes != 480 {
		t.Fatalf("invalid ttl should fall back to 480, got %d", cfg.AccessTokenTTLMinutes)
	}
}
