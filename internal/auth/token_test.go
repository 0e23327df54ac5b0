package auth

import (
	"testing"
	"time"

	"github.com/AjaySisodiyaa/ourTubeApi/internal/models"
)

func testChannel() models.Channel {
	return models.Channel{
		ID:          "channel-1",
		ChannelName: "gopher",
		Email:       "gopher@example.com",
		Phone:       "5550100",
		LogoURL:     "https://cdn.example.com/logos/gopher.png",
	}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	manager, err := NewTokenManager("test-secret")
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}
	token, err := manager.Issue(testChannel())
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.Subject != "channel-1" {
		t.Fatalf("expected subject channel-1, got %q", claims.Subject)
	}
	if claims.ChannelName != "gopher" || claims.Email != "gopher@example.com" {
		t.Fatalf("unexpected profile snapshot: %+v", claims)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, err := NewTokenManager("secret-one")
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}
	verifier, err := NewTokenManager("secret-two")
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}
	token, err := issuer.Issue(testChannel())
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if _, err := verifier.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer, err := NewTokenManager("test-secret",
		WithTokenTTL(time.Hour),
		WithClock(func() time.Time { return issued }),
	)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}
	token, err := issuer.Issue(testChannel())
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	verifier, err := NewTokenManager("test-secret",
		WithClock(func() time.Time { return issued.Add(2 * time.Hour) }),
	)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}
	if _, err := verifier.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	manager, err := NewTokenManager("test-secret")
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}
	for _, token := range []string{"", "   ", "not-a-token", "a.b.c"} {
		if _, err := manager.Verify(token); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	if _, err := NewTokenManager("   "); err == nil {
		t.Fatal("expected error for blank secret")
	}
}
