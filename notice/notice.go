// Package notice describes one-shot messages shown to the user after an
// action, such as "registration successful".
package notice

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
)

type Notice struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func NewSuccess(msg string) Notice { return Notice{Kind: Success, Message: msg} }
func NewError(msg string) Notice   { return Notice{Kind: Error, Message: msg} }
func NewInfo(msg string) Notice    { return Notice{Kind: Info, Message: msg} }

// Messages shared by the sign-in, sign-up and consent flows.
const (
	MsgRegistrationSuccessful = "Registration successful!"
	MsgRegistrationFailed     = "Error signing up or Invalid QR Code"
	MsgUnableToSignIn         = "Unable to sign in"
	MsgSignedOut              = "You have been signed out"
)
