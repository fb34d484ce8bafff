package forms

import (
	"context"

	"github.com/jrsteele09/go-auth-portal/notice"
	"github.com/jrsteele09/go-auth-portal/registration"
	"github.com/jrsteele09/go-auth-portal/session"
	"github.com/rs/zerolog/log"
)

// UnverifiedAccountPath is where users with an unverified email are sent.
const UnverifiedAccountPath = "/unverified-account"

type Credentials struct {
	Email    string
	Password string
}

type SessionSigner interface {
	SignIn(ctx context.Context, email, password, callbackURL string) (session.SignInResult, error)
}

type Committer interface {
	Commit(ctx context.Context, req registration.Request) error
}

// SignInOutcome tells the page what to do after a submit. Session is set
// whenever a session was created, even if a later step failed.
type SignInOutcome struct {
	FieldErrors FieldErrors
	Message     string
	Notices     []notice.Notice
	Redirect    string
	Session     *session.SignInResult
}

type SignIn struct {
	sessions     SessionSigner
	committer    Committer
	minPassword  int
	redirectPath string
}

func NewSignIn(sessions SessionSigner, committer Committer, minPassword int, redirectPath string) *SignIn {
	return &SignIn{
		sessions:     sessions,
		committer:    committer,
		minPassword:  minPassword,
		redirectPath: redirectPath,
	}
}

// Submit signs the user in and, when a registration token is present, binds
// it to their account before redirecting.
func (s *SignIn) Submit(ctx context.Context, c Credentials, token string) SignInOutcome {
	errs := FieldErrors{}
	validateEmail(errs, c.Email)
	validatePassword(errs, c.Password, s.minPassword)
	if errs.Any() {
		return SignInOutcome{FieldErrors: errs}
	}

	res, err := s.sessions.SignIn(ctx, c.Email, c.Password, s.redirectPath)
	if err != nil {
		code := errorCode(err)
		log.Ctx(ctx).Info().Err(err).Str("code", code).Msg("sign in rejected")

		out := SignInOutcome{
			Message: MessageFor(code),
			Notices: []notice.Notice{notice.NewError(notice.MsgUnableToSignIn)},
		}
		if code == CodeUnverifiedEmail {
			out.Redirect = UnverifiedAccountPath
		}
		return out
	}

	out := SignInOutcome{Session: &res}
	if res.URL == "" {
		out.Message = MsgUnknownError
		return out
	}

	if token != "" {
		err := s.committer.Commit(ctx, registration.Request{
			Email:    c.Email,
			Password: c.Password,
			QRCode:   token,
		})
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("user", res.User.ID).Msg("binding registration token failed")
			out.Notices = append(out.Notices, notice.NewError(notice.MsgRegistrationFailed))
			return out
		}
		out.Notices = append(out.Notices, notice.NewSuccess(notice.MsgRegistrationSuccessful))
	}

	out.Redirect = res.URL
	return out
}
