package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignAndVerify(t *testing.T) {
	tokens, err := NewTokens("s3cret", "dev")
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	raw, err := tokens.Sign(Claims{Email: "a@example.com", Admin: true, RegisteredClaims: jwt.RegisteredClaims{Subject: "uid-1"}})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	claims, err := tokens.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "uid-1" || claims.Email != "a@example.com" || !claims.Admin {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	tokens, _ := NewTokens("s3cret", "dev")
	other, _ := NewTokens("other", "dev")

	foreign, _ := other.Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "uid-1"}})
	expired, _ := tokens.Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "uid-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})

	for name, raw := range map[string]string{"foreign": foreign, "expired": expired, "garbage": "a.b.c"} {
		if _, err := tokens.Verify(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestNewTokensRequiresSecretInProduction(t *testing.T) {
	if _, err := NewTokens("", "production"); err == nil {
		t.Fatalf("expected error without secret in production")
	}
}
