package forms

import (
	"errors"

	"github.com/jrsteele09/go-auth-portal/identity"
)

// Sign-in error codes.
const (
	CodeCredentialsNotFound          = "CREDENTIALS_NOT_FOUND"
	CodeIncorrectEmailPassword       = identity.CodeIncorrectEmailPassword
	CodeUserMissingPassword          = "USER_MISSING_PASSWORD"
	CodeIncorrectTwoFactorCode       = "INCORRECT_TWO_FACTOR_CODE"
	CodeIncorrectTwoFactorBackupCode = "INCORRECT_TWO_FACTOR_BACKUP_CODE"
	CodeUnverifiedEmail              = identity.CodeUnverifiedEmail
)

const (
	MsgUnknownError = "An unknown error occurred"
	MsgSignUpFailed = "An error occurred during sign up. Please try again later."
)

var errorMessages = map[string]string{
	CodeCredentialsNotFound:          "The email or password provided is incorrect",
	CodeIncorrectEmailPassword:       "The email or password provided is incorrect",
	CodeUserMissingPassword:          "This account appears to be using a social login method, please sign in using that method",
	CodeIncorrectTwoFactorCode:       "The two-factor authentication code provided is incorrect",
	CodeIncorrectTwoFactorBackupCode: "The backup code provided is incorrect",
	CodeUnverifiedEmail:              "This account has not been verified. Please verify your account before signing in.",
}

// MessageFor returns the text shown for a sign-in error code.
func MessageFor(code string) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return MsgUnknownError
}

// errorCode extracts the sign-in error code from err, or "" when err is not
// a rejected exchange.
func errorCode(err error) string {
	var exErr *identity.ExchangeError
	if errors.As(err, &exErr) {
		return exErr.Code
	}
	return ""
}
