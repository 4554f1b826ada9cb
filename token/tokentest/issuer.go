// Package tokentest issues session tokens shaped like the ones the Tally
// backend returns from /login. It is meant for tests only.
package tokentest

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/tally-client/token"
)

// Secret is the HS256 key used for signing. Nothing on the client verifies it.
var Secret = []byte("tally-test-secret")

// Claims describes the token to issue
type Claims struct {
	Issuer      string
	Subject     string
	Audience    []string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Authorities []token.Role
}

// Default returns claims for a regular user whose token expires in ten hours,
// the lifetime the backend grants.
func Default(now time.Time) Claims {
	return Claims{
		Issuer:      "tally-backend",
		Subject:     "user@example.com",
		Audience:    []string{"tally"},
		IssuedAt:    now,
		ExpiresAt:   now.Add(10 * time.Hour),
		Authorities: []token.Role{token.RoleUser},
	}
}

// Issue signs the claims and returns the compact token
func Issue(t testing.TB, c Claims) string {
	t.Helper()
	authorities := make([]string, 0, len(c.Authorities))
	for _, r := range c.Authorities {
		authorities = append(authorities, string(r))
	}
	claims := jwtlib.MapClaims{
		"iss":         c.Issuer,
		"sub":         c.Subject,
		"aud":         c.Audience,
		"iat":         c.IssuedAt.Unix(),
		"exp":         c.ExpiresAt.Unix(),
		"authorities": authorities,
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(Secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// Raw builds a token around an arbitrary payload object, leaving the caller in
// full control of which claims are present.
func Raw(t testing.TB, payload map[string]any) string {
	t.Helper()
	header := segment(t, map[string]any{"alg": "HS256", "typ": "JWT"})
	return header + "." + segment(t, payload) + ".c2lnbmF0dXJl"
}

func segment(t testing.TB, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal segment: %v", err)
	}
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "=")
}
