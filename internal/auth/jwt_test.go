package auth

import (
	"errors"
	"testing"
	"time"
)

func testConfig() *Config {
	return &Config{
		Secret: []byte("test-secret-change-me"),
		Issuer: "test",
	}
}

func TestGenerateAndValidateKey(t *testing.T) {
	cfg := testConfig()

	key, err := GenerateKey(cfg, RoleAnon)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateKey(cfg, key)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Role != RoleAnon {
		t.Fatalf("expected role %q, got %q", RoleAnon, claims.Role)
	}
	if claims.ExpiresAt != nil {
		t.Fatalf("expected no expiry, got %v", claims.ExpiresAt)
	}
}

func TestGenerateKey_RejectsUnknownRole(t *testing.T) {
	if _, err := GenerateKey(testConfig(), "admin"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestValidateKey_Failures(t *testing.T) {
	cfg := testConfig()

	other := &Config{Secret: []byte("another-secret"), Issuer: "test"}
	foreign, err := GenerateKey(other, RoleAnon)
	if err != nil {
		t.Fatalf("generate foreign: %v", err)
	}

	wrongIssuer := &Config{Secret: cfg.Secret, Issuer: "elsewhere"}
	misissued, err := GenerateKey(wrongIssuer, RoleAnon)
	if err != nil {
		t.Fatalf("generate misissued: %v", err)
	}

	expiring := &Config{Secret: cfg.Secret, Issuer: "test", TTL: -time.Minute}
	expired, err := GenerateKey(expiring, RoleAnon)
	if err != nil {
		t.Fatalf("generate expired: %v", err)
	}

	cases := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"wrong issuer": misissued,
		"expired":      expired,
	}
	for name, key := range cases {
		if _, err := ValidateKey(cfg, key); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	if _, err := ValidateKey(cfg, ""); !errors.Is(err, ErrMissingKey) {
		t.Errorf("empty: expected ErrMissingKey, got %v", err)
	}
}
