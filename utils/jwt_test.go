package utils

import (
	"testing"
	"time"

	"github.com/feedpulse/feedpulse/config"
)

func setTestConfig(t *testing.T) {
	t.Helper()
	config.Set(config.AppConfig{JWTSecret: "test-secret", CacheEnabled: false})
}

func TestTokenRoundTrip(t *testing.T) {
	setTestConfig(t)

	token, err := GenerateToken(42, "alice@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.ExpiresAt == nil {
		t.Fatal("token carries no expiry")
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 || remaining > TokenTTL {
		t.Errorf("expiry %v out of the fixed lifetime window", remaining)
	}
}

func TestParseTokenRejectsTampering(t *testing.T) {
	setTestConfig(t)

	token, err := GenerateToken(42, "alice@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ParseToken(token + "x"); err == nil {
		t.Error("tampered signature accepted")
	}
	if _, err := ParseToken("garbage"); err == nil {
		t.Error("malformed token accepted")
	}

	config.Set(config.AppConfig{JWTSecret: "rotated-secret", CacheEnabled: false})
	if _, err := ParseToken(token); err == nil {
		t.Error("token signed with the old secret accepted")
	}
}

func TestBlacklistRoundTrip(t *testing.T) {
	setTestConfig(t)

	token, err := GenerateToken(7, "bob@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if IsTokenBlacklisted(token) {
		t.Error("fresh token already blacklisted")
	}

	BlacklistToken(token, time.Now().Add(time.Hour))
	if !IsTokenBlacklisted(token) {
		t.Error("revoked token not blacklisted")
	}
}

func TestBlacklistExpires(t *testing.T) {
	setTestConfig(t)

	BlacklistToken("short-lived", time.Now().Add(20*time.Millisecond))
	if !IsTokenBlacklisted("short-lived") {
		t.Fatal("token not blacklisted")
	}
	time.Sleep(30 * time.Millisecond)
	if IsTokenBlacklisted("short-lived") {
		t.Error("blacklist entry survived past the token expiry")
	}
}

func TestBlacklistIgnoresAlreadyExpired(t *testing.T) {
	setTestConfig(t)

	BlacklistToken("stale", time.Now().Add(-time.Minute))
	if IsTokenBlacklisted("stale") {
		t.Error("already-expired token needs no blacklist entry")
	}
}
