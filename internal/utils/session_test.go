package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, exp, err := NewSessionToken("test-secret", 42, 7)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if until := time.Until(exp); until < 6*24*time.Hour {
		t.Errorf("expiry too soon: %v", exp)
	}
	id, err := ParseSessionToken("test-secret", token)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if id != 42 {
		t.Errorf("got account id %d, want 42", id)
	}
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, _, err := NewSessionToken("secret-a", 7, 7)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if _, err := ParseSessionToken("secret-b", token); err != ErrInvalidToken {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestSessionTokenExpired(t *testing.T) {
	claims := jwt.MapClaims{
		"sub": 7,
		"exp": time.Now().Add(-time.Hour).Unix(),
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseSessionToken("test-secret", signed); err != ErrInvalidToken {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestSessionTokenGarbage(t *testing.T) {
	if _, err := ParseSessionToken("test-secret", "not-a-token"); err != ErrInvalidToken {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}
