package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/JonMunkholm/mealplan/internal/core"
)

const secret = "0123456789abcdef0123"

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens(secret, "meals", "meals-web")
	want := core.Caller{UID: "u1", Email: "u1@example.com"}

	tok, err := tokens.Issue(want, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	got, err := tokens.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != want {
		t.Errorf("Verify = %+v, want %+v", got, want)
	}
}

func TestTokens_Rejects(t *testing.T) {
	tokens := NewTokens(secret, "meals", "")
	caller := core.Caller{UID: "u1", Email: "u1@example.com"}

	expired, _ := tokens.Issue(caller, -time.Hour)
	otherKey, _ := NewTokens("a-different-secret-value", "meals", "").Issue(caller, time.Hour)
	wrongIssuer, _ := NewTokens(secret, "someone-else", "").Issue(caller, time.Hour)
	noSubject, _ := tokens.Issue(core.Caller{Email: "x@example.com"}, time.Hour)

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: "meals"},
	}).SignedString([]byte(secret))

	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "meals",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"expired", expired},
		{"wrong key", otherKey},
		{"wrong issuer", wrongIssuer},
		{"no subject", noSubject},
		{"no expiry", noExp},
		{"alg none", unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tokens.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestTokens_Audience(t *testing.T) {
	verifier := NewTokens(secret, "", "meals-web")
	caller := core.Caller{UID: "u1"}

	other, _ := NewTokens(secret, "", "other-app").Issue(caller, time.Hour)
	if _, err := verifier.Verify(other); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify wrong audience = %v, want ErrInvalidToken", err)
	}

	ok, _ := NewTokens(secret, "", "meals-web").Issue(caller, time.Hour)
	if _, err := verifier.Verify(ok); err != nil {
		t.Errorf("Verify matching audience: %v", err)
	}
}
