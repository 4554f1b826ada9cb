package token_test

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/jrsteele09/tally-client/token"
	"github.com/jrsteele09/tally-client/token/tokentest"
	"github.com/stretchr/testify/require"
)

func validPayload() map[string]any {
	return map[string]any{
		"iss":         "tally-backend",
		"sub":         "jane@example.com",
		"aud":         []string{"tally"},
		"exp":         1700036000,
		"iat":         1700000000,
		"authorities": []string{"user", "admin"},
	}
}

func b64(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestDecode_RoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 0)
	claims := tokentest.Default(now)
	claims.Subject = "jane@example.com"
	claims.Authorities = []token.Role{token.RoleAdmin, token.RoleUser}

	p, err := token.Decode(tokentest.Issue(t, claims))
	require.NoError(t, err)
	require.Equal(t, "tally-backend", p.Issuer)
	require.Equal(t, "jane@example.com", p.Subject)
	require.Equal(t, "tally", p.Audience)
	require.Equal(t, now.Unix(), p.IssuedAt)
	require.Equal(t, now.Add(10*time.Hour).Unix(), p.ExpiresAt)
	require.Equal(t, []token.Role{token.RoleAdmin, token.RoleUser}, p.Authorities)
	require.Equal(t, now.Add(10*time.Hour), p.ExpiresAtTime())
	require.Equal(t, now, p.IssuedAtTime())
}

func TestDecode_IsPure(t *testing.T) {
	raw := tokentest.Raw(t, validPayload())

	first, err := token.Decode(raw)
	require.NoError(t, err)
	second, err := token.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDecode_PayloadShapes(t *testing.T) {
	t.Run("audience as plain string", func(t *testing.T) {
		payload := validPayload()
		payload["aud"] = "tally"
		p, err := token.Decode(tokentest.Raw(t, payload))
		require.NoError(t, err)
		require.Equal(t, "tally", p.Audience)
	})

	t.Run("padded segments", func(t *testing.T) {
		header := base64.URLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
		payload := base64.URLEncoding.EncodeToString([]byte(`{"iss":"i","sub":"s@x.io","aud":"a","exp":20,"iat":10,"authorities":["user"]}`))
		p, err := token.Decode(header + "." + payload + ".sig")
		require.NoError(t, err)
		require.Equal(t, int64(20), p.ExpiresAt)
	})

	t.Run("unknown signing algorithm is not a decode error", func(t *testing.T) {
		raw := b64(`{"alg":"XY999"}`) + "." + b64(`{"iss":"i","sub":"s@x.io","aud":"a","exp":20,"iat":10,"authorities":[]}`) + ".sig"
		p, err := token.Decode(raw)
		require.NoError(t, err)
		require.Empty(t, p.Authorities)
	})

	t.Run("unknown authorities are kept", func(t *testing.T) {
		payload := validPayload()
		payload["authorities"] = []string{"invitation"}
		p, err := token.Decode(tokentest.Raw(t, payload))
		require.NoError(t, err)
		require.Equal(t, []token.Role{"invitation"}, p.Authorities)
		require.False(t, p.Authorities[0].Known())
	})
}

func TestDecode_Malformed(t *testing.T) {
	header := b64(`{"alg":"HS256","typ":"JWT"}`)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"one segment", "abc"},
		{"two segments", header + "." + b64(`{}`)},
		{"four segments", header + "." + b64(`{}`) + ".sig.extra"},
		{"payload not base64", header + ".%%%%.sig"},
		{"payload not json", header + "." + b64("not json") + ".sig"},
		{"exp not a number", header + "." + b64(`{"iss":"i","sub":"s","aud":"a","exp":"soon","iat":1,"authorities":[]}`) + ".sig"},
		{"authorities not an array", header + "." + b64(`{"iss":"i","sub":"s","aud":"a","exp":2,"iat":1,"authorities":"admin"}`) + ".sig"},
		{"authorities not strings", header + "." + b64(`{"iss":"i","sub":"s","aud":"a","exp":2,"iat":1,"authorities":[1]}`) + ".sig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := token.Decode(tt.raw)
			require.Nil(t, p)
			require.ErrorIs(t, err, token.ErrMalformedToken)

			var malformed *token.MalformedTokenError
			require.True(t, errors.As(err, &malformed))
		})
	}
}

func TestDecode_MissingField(t *testing.T) {
	for _, field := range []string{"iss", "sub", "aud", "exp", "iat", "authorities"} {
		t.Run(field, func(t *testing.T) {
			payload := validPayload()
			delete(payload, field)

			_, err := token.Decode(tokentest.Raw(t, payload))
			require.ErrorIs(t, err, token.ErrMissingField)

			var missing *token.MissingFieldError
			require.True(t, errors.As(err, &missing))
			require.Equal(t, field, missing.Field)
		})
	}

	t.Run("null counts as missing", func(t *testing.T) {
		payload := validPayload()
		payload["sub"] = nil
		_, err := token.Decode(tokentest.Raw(t, payload))
		require.ErrorIs(t, err, token.ErrMissingField)
	})
}

func TestPayload_HasAuthorities(t *testing.T) {
	p := &token.Payload{Authorities: []token.Role{token.RoleUser, token.RoleAdmin}}

	require.True(t, p.HasAuthorities())
	require.True(t, p.HasAuthorities(token.RoleAdmin))
	require.True(t, p.HasAuthorities(token.RoleAdmin, token.RoleUser, token.RoleAdmin))
	require.False(t, (&token.Payload{Authorities: []token.Role{token.RoleUser}}).HasAuthorities(token.RoleUser, token.RoleAdmin))
	require.False(t, (&token.Payload{}).HasAuthorities(token.RoleUser))
}
