package auth

import (
	"testing"
	"time"

	perr "seogate/internal/platform/errors"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func TestNewVerifier_EmptySecret(t *testing.T) {
	if _, err := NewVerifier(Config{Secret: "  "}); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestVerify(t *testing.T) {
	v, err := NewVerifier(Config{Secret: testSecret, Audience: "authenticated"})
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	good, _ := Sign(testSecret, "user-1", "authenticated", "authenticated", time.Hour)
	expired, _ := Sign(testSecret, "user-1", "authenticated", "authenticated", -time.Minute)
	wrongAud, _ := Sign(testSecret, "user-1", "authenticated", "anon", time.Hour)
	wrongKey, _ := Sign("another-secret", "user-1", "authenticated", "authenticated", time.Hour)
	noSub, _ := Sign(testSecret, "", "authenticated", "authenticated", time.Hour)
	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-1", "aud": "authenticated", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	cases := []struct {
		name  string
		token string
		ok    bool
	}{
		{"valid", good, true},
		{"expired", expired, false},
		{"wrong audience", wrongAud, false},
		{"wrong key", wrongKey, false},
		{"no subject", noSub, false},
		{"alg none", noneAlg, false},
		{"garbage", "not.a.jwt", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := v.Verify(tc.token)
			if tc.ok {
				if err != nil {
					t.Fatalf("Verify: %v", err)
				}
				if c.Subject != "user-1" || c.Role != "authenticated" {
					t.Fatalf("claims %+v", c)
				}
				return
			}
			if !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
				t.Fatalf("expected unauthorized, got %v", err)
			}
		})
	}
}

func TestTokenFunc(t *testing.T) {
	v, _ := NewVerifier(Config{Secret: testSecret})
	tok, _ := Sign(testSecret, "user-9", "service_role", "", time.Hour)

	caller, role, err := v.TokenFunc()(tok)
	if err != nil || caller != "user-9" || role != "service_role" {
		t.Fatalf("TokenFunc = %q %q %v", caller, role, err)
	}
	if _, _, err := v.TokenFunc()("bad"); err == nil {
		t.Fatal("expected error")
	}
}
