package sandbox

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	m, err := NewTokenManager([]byte("0123456789abcdef0123456789abcdef"), 0)
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}
	if m.TTL() != DefaultSessionTTL {
		t.Fatalf("expected default ttl, got %v", m.TTL())
	}

	token, err := m.Issue("u1", "s1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.UID != "u1" || claims.SID != "s1" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestTokenExpiry(t *testing.T) {
	m, err := NewTokenManager([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}
	base := time.Now()
	m.now = func() time.Time { return base }

	token, err := m.Issue("u1", "s1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	m.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, err := m.Parse(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestTokenWrongKeyRejected(t *testing.T) {
	a, _ := NewTokenManager([]byte("0123456789abcdef0123456789abcdef"), 0)
	b, _ := NewTokenManager([]byte("fedcba9876543210fedcba9876543210"), 0)

	token, err := a.Issue("u1", "s1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := b.Parse(token); err == nil {
		t.Fatal("expected signature mismatch")
	}
}

func TestNewTokenManagerRejectsShortKey(t *testing.T) {
	if _, err := NewTokenManager([]byte("short"), 0); err == nil {
		t.Fatal("expected error for short key")
	}
}
