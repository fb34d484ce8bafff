package identity

import (
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/go-auth-portal/internal/errors"
	"golang.org/x/oauth2"
)

// Error codes reported by a failed credential exchange.
const (
	CodeIncorrectEmailPassword = "INCORRECT_EMAIL_PASSWORD"
	CodeUnverifiedEmail        = "UNVERIFIED_EMAIL"
	CodeUpstreamUnavailable    = "UPSTREAM_UNAVAILABLE"
)

// Keycloak error descriptions for the password grant.
var descriptionCodes = map[string]string{
	"invalid user credentials":    CodeIncorrectEmailPassword,
	"account is not fully set up": CodeUnverifiedEmail,
}

// ExchangeError is a rejected credential exchange.
type ExchangeError struct {
	Code        string
	Description string
	err         error
}

func (e *ExchangeError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("credential exchange failed: %s", e.Code)
	}
	return fmt.Sprintf("credential exchange failed: %s (%s)", e.Code, e.Description)
}

func (e *ExchangeError) Unwrap() error {
	switch e.Code {
	case CodeIncorrectEmailPassword:
		return apperrors.ErrInvalidCredentials
	case CodeUnverifiedEmail:
		return apperrors.ErrUserNotVerified
	}
	if e.err != nil {
		return e.err
	}
	return apperrors.ErrUpstream
}

// exchangeErrorFrom classifies an error returned by the token endpoint.
func exchangeErrorFrom(err error) *ExchangeError {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return &ExchangeError{Code: CodeUpstreamUnavailable, Description: err.Error(), err: apperrors.ErrUpstream}
	}

	desc := strings.TrimSpace(re.ErrorDescription)
	if code, ok := descriptionCodes[strings.ToLower(desc)]; ok {
		return &ExchangeError{Code: code, Description: desc}
	}

	code := strings.ToUpper(re.ErrorCode)
	if code == "" {
		code = CodeUpstreamUnavailable
	}
	return &ExchangeError{Code: code, Description: desc, err: apperrors.ErrUpstream}
}
