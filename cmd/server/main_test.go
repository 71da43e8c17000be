package main

import (
	"testing"

	"kasszapont/backend/internal/config"
)

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	if err := validateSecurityConfig(config.Config{AuthSecret: "short"}); err == nil {
		t.Fatalf("expected weak security config to be rejected")
	}
	err := validateSecurityConfig(config.Config{
		AuthSecret:     "0123456789abcdef0123456789abcdef",
		GatewayBaseURL: "https://gateway.example.com",
	})
	if err == nil {
		t.Fatalf("expected gateway url without api key to be rejected")
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{
		AuthSecret:     "0123456789abcdef0123456789abcdef",
		GatewayBaseURL: "https://gateway.example.com",
		GatewayAPIKey:  "live-key",
	})
	if err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}
