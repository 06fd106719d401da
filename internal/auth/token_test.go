package auth

import (
	"errors"
	"testing"
	"time"
)

func testUser() User {
	return User{
		ID:       "u-1",
		Username: "admin",
		Email:    "admin@example.com",
		Role:     RoleAdmin,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", "catalog", "clients", time.Hour)

	raw, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if claims.UserID != "u-1" || claims.Username != "admin" || claims.Email != "admin@example.com" || claims.Role != RoleAdmin {
		t.Fatalf("claims do not match user: %+v", claims)
	}
	if claims.Issuer != "catalog" {
		t.Fatalf("want issuer catalog, got %q", claims.Issuer)
	}
}

func TestTokenVerifyFailures(t *testing.T) {
	m := NewTokenManager("secret", "catalog", "clients", time.Hour)
	raw, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name     string
		verifier *TokenManager
		token    string
	}{
		{
			name:     "wrong secret",
			verifier: NewTokenManager("other-secret", "catalog", "clients", time.Hour),
			token:    raw,
		},
		{
			name:     "wrong issuer",
			verifier: NewTokenManager("secret", "someone-else", "clients", time.Hour),
			token:    raw,
		},
		{
			name:     "wrong audience",
			verifier: NewTokenManager("secret", "catalog", "other-clients", time.Hour),
			token:    raw,
		},
		{
			name:     "garbage token",
			verifier: m,
			token:    "not.a.token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.verifier.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("want ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenExpiry(t *testing.T) {
	m := NewTokenManager("secret", "catalog", "clients", -time.Minute)

	raw, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken for expired token, got %v", err)
	}
}
