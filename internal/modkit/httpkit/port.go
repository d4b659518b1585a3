// Package httpkit provides tiny HTTP helpers and adapters
package httpkit

import (
	"net/http"
	"strings"

	perrs "seogate/internal/platform/errors"
)

// TokenFunc parses a bearer token and returns the caller id and its role claim
type TokenFunc func(token string) (callerID string, role string, err error)

// Port implements middleware.AuthPort by reading Authorization and delegating to a TokenFunc
type Port struct {
	parse TokenFunc
}

// NewPortFunc builds a Port from a simple parser function
func NewPortFunc(fn TokenFunc) *Port {
	return &Port{parse: fn}
}

// Parse extracts the caller from the Authorization Bearer token.
// Verifier details never leak; any parser error reads as an invalid token.
func (p *Port) Parse(r *http.Request) (string, string, error) {
	raw, ok := bearer(r.Header.Get("Authorization"))
	if !ok {
		return "", "", perrs.Unauthorizedf("missing bearer token")
	}
	if p.parse == nil {
		return "", "", perrs.Unauthorizedf("invalid bearer token")
	}
	callerID, role, err := p.parse(raw)
	if err != nil {
		return "", "", perrs.Unauthorizedf("invalid bearer token")
	}
	if callerID == "" {
		return "", "", perrs.Unauthorizedf("token has no subject")
	}
	return callerID, role, nil
}

// bearer returns the token of a case-insensitive "Bearer <token>" header
func bearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
