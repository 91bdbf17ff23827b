package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestManager_RoundTrip(t *testing.T) {
	m, err := NewManager("0123456789abcdef0123", time.Hour, 24*time.Hour, "test")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	pair, err := m.GenerateTokenPair("user-1")
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	claims, err := m.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}

	if _, err := m.ValidateAccessToken(pair.RefreshToken); !errors.Is(err, ErrWrongTokenType) {
		t.Errorf("refresh as access: err = %v, want ErrWrongTokenType", err)
	}

	next, err := m.RefreshTokens(pair.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshTokens: %v", err)
	}
	if _, err := m.ValidateAccessToken(next.AccessToken); err != nil {
		t.Errorf("refreshed access token invalid: %v", err)
	}
}

func TestManager_Rejects(t *testing.T) {
	m, _ := NewManager("0123456789abcdef0123", time.Hour, 24*time.Hour, "test")
	other, _ := NewManager("another-secret-value-xx", time.Hour, 24*time.Hour, "test")

	foreign, _ := other.GenerateTokenPair("user-1")

	expired, _ := NewManager("0123456789abcdef0123", time.Hour, 24*time.Hour, "test")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _ := expired.GenerateTokenPair("user-1")

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-token", ErrInvalidToken},
		{"foreign secret", foreign.AccessToken, ErrInvalidToken},
		{"expired", stale.AccessToken, ErrExpiredToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.ValidateAccessToken(tt.token); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewManager_ShortSecret(t *testing.T) {
	if _, err := NewManager("short", time.Hour, time.Hour, "test"); err == nil {
		t.Fatal("expected error for short secret")
	}
}
