package errors

import (
	"errors"
	"fmt"
)

// Common error types for the Tally client
var (
	// Token errors
	ErrMalformedToken = errors.New("malformed token")
	ErrMissingField   = errors.New("token missing required field")

	// Session errors
	ErrNoSession = errors.New("no session")

	// Transport errors
	ErrInvalidRequest  = errors.New("invalid request")
	ErrUnexpectedReply = errors.New("unexpected response")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
