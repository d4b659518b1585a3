// Package auth verifies Supabase access tokens
package auth

import (
	"errors"
	"strings"
	"time"

	perr "seogate/internal/platform/errors"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of a Supabase access token we read
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Config configures the verifier
type Config struct {
	Secret   string        // project JWT secret (HS256)
	Audience string        // expected aud, empty skips the check
	Leeway   time.Duration // clock skew allowance
}

// Verifier validates HS256 tokens signed with the project secret
type Verifier struct {
	key    []byte
	parser *jwt.Parser
}

// NewVerifier builds a verifier, an empty secret is a configuration error
func NewVerifier(cfg Config) (*Verifier, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("auth: empty jwt secret")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(cfg.Leeway))
	}
	return &Verifier{key: []byte(cfg.Secret), parser: jwt.NewParser(opts...)}, nil
}

// Verify parses and validates a raw token
func (v *Verifier) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnauthorized, "invalid token")
	}
	if !tok.Valid {
		return nil, perr.Unauthorizedf("invalid token")
	}
	if claims.Subject == "" {
		return nil, perr.Unauthorizedf("token has no subject")
	}
	return claims, nil
}

// TokenFunc adapts the verifier to the http auth port: caller id is sub, role is the role claim
func (v *Verifier) TokenFunc() func(string) (string, string, error) {
	return func(raw string) (string, string, error) {
		c, err := v.Verify(raw)
		if err != nil {
			return "", "", err
		}
		return c.Subject, c.Role, nil
	}
}

// Sign issues a token for sub, used by tests and local tooling
func Sign(secret, sub, role, audience string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
