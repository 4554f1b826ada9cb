package token

import (
	"fmt"

	apperrors "github.com/jrsteele09/tally-client/internal/errors"
)

var (
	ErrMalformedToken = apperrors.ErrMalformedToken
	ErrMissingField   = apperrors.ErrMissingField
)

// MalformedTokenError reports a token that could not be split, base64 decoded
// or parsed as JSON.
type MalformedTokenError struct {
	Reason string
	Err    error
}

func (e *MalformedTokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMalformedToken, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedToken, e.Reason)
}

func (e *MalformedTokenError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedToken}
	}
	return []error{ErrMalformedToken, e.Err}
}

// MissingFieldError names the claim absent from an otherwise well-formed payload.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField, e.Field)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}
