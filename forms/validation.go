package forms

import (
	"fmt"
	"net/mail"
	"strings"
)

// Field names used in FieldErrors. They match the form input names.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
)

const (
	MsgInvalidEmail      = "Invalid email address"
	MsgFirstNameRequired = "First name is required"
	MsgLastNameRequired  = "Last name is required"
	MsgPasswordsMismatch = "Passwords don't match"
)

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (e FieldErrors) Any() bool {
	return len(e) > 0
}

func (e FieldErrors) Get(field string) string {
	return e[field]
}

func passwordTooShort(min int) string {
	return fmt.Sprintf("Password must be at least %d characters long", min)
}

// validEmail accepts a bare address whose domain has at least one dot.
func validEmail(email string) bool {
	if email == "" || strings.TrimSpace(email) != email {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

func validateEmail(errs FieldErrors, email string) {
	if !validEmail(email) {
		errs[FieldEmail] = MsgInvalidEmail
	}
}

func validatePassword(errs FieldErrors, password string, min int) {
	if len([]rune(password)) < min {
		errs[FieldPassword] = passwordTooShort(min)
	}
}

// PasswordError returns the message shown for password, or "" when it is
// long enough.
func PasswordError(password string, min int) string {
	errs := FieldErrors{}
	validatePassword(errs, password, min)
	return errs.Get(FieldPassword)
}
