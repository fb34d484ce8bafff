package errors

import (
	"errors"
	"fmt"
)

// Common error types for the auth portal
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotVerified    = errors.New("user is not verified")

	// Registration token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenMissing = errors.New("token is required")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Consent visit errors
	ErrVisitNotFound = errors.New("consent visit not found")
	ErrVisitMismatch = errors.New("consent visit does not match token")

	// Upstream errors
	ErrUpstream          = errors.New("upstream request failed")
	ErrUpstreamMalformed = errors.New("upstream response malformed")

	// General errors
	ErrInvalidRequest  = errors.New("invalid request")
	ErrNotConfigured   = errors.New("not configured")
	ErrUnsupportedMode = errors.New("unsupported mode")
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
