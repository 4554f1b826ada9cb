package token

import (
	"errors"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/tally-client/internal/utils"
)

const authoritiesClaim = "authorities"

// requiredClaims are checked in wire order so the reported field is stable
var requiredClaims = []string{"iss", "sub", "aud", "exp", "iat", authoritiesClaim}

var parser = jwtlib.NewParser(jwtlib.WithPaddingAllowed(), jwtlib.WithJSONNumber())

// Decode reads the payload segment of a header.payload.signature token.
//
// The signature is never checked: the backend is the verifier and the decoded
// payload is advisory only. Errors are *MalformedTokenError or *MissingFieldError.
func Decode(raw string) (*Payload, error) {
	parsed, _, err := parser.ParseUnverified(raw, jwtlib.MapClaims{})
	// An unknown or absent alg only matters for verification, which we skip.
	if err != nil && (parsed == nil || !errors.Is(err, jwtlib.ErrTokenUnverifiable)) {
		return nil, &MalformedTokenError{Reason: "unable to parse token", Err: err}
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, &MalformedTokenError{Reason: "unexpected claims type"}
	}

	for _, name := range requiredClaims {
		if v, ok := claims[name]; !ok || v == nil {
			return nil, &MissingFieldError{Field: name}
		}
	}

	iss, err := claims.GetIssuer()
	if err != nil {
		return nil, &MalformedTokenError{Reason: "iss", Err: err}
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return nil, &MalformedTokenError{Reason: "sub", Err: err}
	}
	aud, err := claims.GetAudience()
	if err != nil {
		return nil, &MalformedTokenError{Reason: "aud", Err: err}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, &MalformedTokenError{Reason: "exp", Err: err}
	}
	iat, err := claims.GetIssuedAt()
	if err != nil {
		return nil, &MalformedTokenError{Reason: "iat", Err: err}
	}

	rawAuthorities, ok := claims[authoritiesClaim].([]any)
	if !ok {
		return nil, &MalformedTokenError{Reason: "authorities must be an array"}
	}
	authorities, ok := utils.ToStringSlice(rawAuthorities)
	if !ok {
		return nil, &MalformedTokenError{Reason: "authorities must be strings"}
	}

	roles := make([]Role, 0, len(authorities))
	for _, a := range authorities {
		roles = append(roles, Role(a))
	}

	return &Payload{
		Issuer:      iss,
		Subject:     sub,
		Audience:    strings.Join(aud, " "),
		ExpiresAt:   exp.Unix(),
		IssuedAt:    iat.Unix(),
		Authorities: roles,
	}, nil
}
