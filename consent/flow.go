package consent

import (
	"context"
	"net/url"

	apperrors "github.com/jrsteele09/go-auth-portal/internal/errors"
	"github.com/jrsteele09/go-auth-portal/notice"
	"github.com/jrsteele09/go-auth-portal/registration"
	"github.com/jrsteele09/go-auth-portal/session"
	"github.com/rs/zerolog/log"
)

const (
	signInPath = "/auth/signin"
	signUpPath = "/auth/signup"
)

type TokenValidator interface {
	Validate(ctx context.Context, token string) registration.Validity
}

type Committer interface {
	Commit(ctx context.Context, req registration.Request) error
}

// Flow is one visit to the consent page for a single token.
type Flow struct {
	validator           TokenValidator
	committer           Committer
	placeholderPassword string

	token     string
	validity  registration.Validity
	user      *session.User
	accepted  bool
	committed bool
	outcome   *notice.Notice
}

func NewFlow(token string, validator TokenValidator, committer Committer, placeholderPassword string) *Flow {
	return &Flow{
		validator:           validator,
		committer:           committer,
		placeholderPassword: placeholderPassword,
		token:               token,
	}
}

func (f *Flow) Token() string {
	return f.token
}

// Validate checks the token once per visit. Later calls keep the first answer.
func (f *Flow) Validate(ctx context.Context) registration.Validity {
	if f.validity != registration.Unknown {
		return f.validity
	}
	if f.token == "" {
		// An empty token has nothing to bind.
		f.validity = registration.Invalid
		return f.validity
	}
	f.validity = f.validator.Validate(ctx, f.token)
	return f.validity
}

// SetSession records who is signed in, or nil for nobody.
func (f *Flow) SetSession(u *session.User) {
	if u == nil {
		f.user = nil
		return
	}
	cp := *u
	f.user = &cp
}

func (f *Flow) State() State {
	return Evaluate(Inputs{
		Validity: f.validity,
		SignedIn: f.user != nil,
		Accepted: f.accepted,
	})
}

// Accept records the user's agreement and binds the token to their account.
// It only has an effect while awaiting consent. The commit is attempted once;
// its outcome is returned as a notice and the visit is complete either way.
func (f *Flow) Accept(ctx context.Context) (notice.Notice, error) {
	if f.State() != AwaitingConsent {
		if f.outcome != nil {
			return *f.outcome, nil
		}
		return notice.Notice{}, apperrors.Wrapf(apperrors.ErrInvalidRequest, "[Flow Accept] state %s", f.State())
	}

	f.accepted = true
	if f.committed && f.outcome != nil {
		return *f.outcome, nil
	}
	f.committed = true

	err := f.committer.Commit(ctx, registration.Request{
		Email:    f.user.Email,
		Password: f.placeholderPassword,
		QRCode:   f.token,
	})

	var n notice.Notice
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("user", f.user.ID).Msg("binding registration token failed")
		n = notice.NewError(notice.MsgRegistrationFailed)
	} else {
		n = notice.NewSuccess(notice.MsgRegistrationSuccessful)
	}
	f.outcome = &n
	return n, nil
}

// Decline withdraws the pending agreement. The caller signs the user out;
// the visit returns to its entry state.
func (f *Flow) Decline() {
	f.accepted = false
	f.user = nil
}

// SignInPath is the sign-in page that returns to this token.
func (f *Flow) SignInPath() string {
	return withToken(signInPath, f.token)
}

// SignUpPath is the sign-up page that returns to this token.
func (f *Flow) SignUpPath() string {
	return withToken(signUpPath, f.token)
}

func withToken(path, token string) string {
	if token == "" {
		return path
	}
	return path + "?" + url.Values{"token": {token}}.Encode()
}
