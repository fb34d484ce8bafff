// Package consent drives the registration-token page: validate the token,
// make sure someone is signed in, collect their agreement and bind the token
// to their account.
package consent

import "github.com/jrsteele09/go-auth-portal/registration"

type State int

const (
	Loading State = iota
	InvalidToken
	AwaitingAuth
	AwaitingConsent
	Complete
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case InvalidToken:
		return "invalid-token"
	case AwaitingAuth:
		return "awaiting-auth"
	case AwaitingConsent:
		return "awaiting-consent"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// Inputs are the facts a page visit has gathered so far.
type Inputs struct {
	Validity registration.Validity
	SignedIn bool
	Accepted bool
}

// Evaluate maps inputs to the state shown. The checks run in a fixed order:
// an unvalidated token, then an invalid token, then a signed-in user who has
// not agreed, then a visitor who is not signed in.
func Evaluate(in Inputs) State {
	switch {
	case in.Validity == registration.Unknown:
		return Loading
	case in.Validity != registration.Valid:
		return InvalidToken
	case in.SignedIn && !in.Accepted:
		return AwaitingConsent
	case !in.SignedIn:
		return AwaitingAuth
	default:
		return Complete
	}
}
