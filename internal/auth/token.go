// Package auth verifies the bearer tokens that identify callers.
//
// Tokens are HS256 JWTs. The subject claim is the caller's UID and the
// email claim their address; both are copied into a core.Caller.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/JonMunkholm/mealplan/internal/core"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// leeway absorbs clock skew between the issuer and this server.
const leeway = 30 * time.Second

// Claims is the token payload.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Tokens verifies and issues caller tokens with one shared secret.
type Tokens struct {
	secret   []byte
	issuer   string
	audience string
	parser   *jwt.Parser
}

// NewTokens returns Tokens for secret. When issuer or audience is set,
// verified tokens must carry a matching iss or aud claim.
func NewTokens(secret, issuer, audience string) *Tokens {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	return &Tokens{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		parser:   jwt.NewParser(opts...),
	}
}

// Verify checks tokenString and returns the caller it identifies.
func (t *Tokens) Verify(tokenString string) (core.Caller, error) {
	if tokenString == "" {
		return core.Caller{}, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	claims := &Claims{}
	_, err := t.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil {
		return core.Caller{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return core.Caller{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return core.Caller{UID: claims.Subject, Email: claims.Email}, nil
}

// Issue signs a token for caller valid for ttl.
func (t *Tokens) Issue(caller core.Caller, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: caller.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.UID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if t.audience != "" {
		claims.Audience = jwt.ClaimStrings{t.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
