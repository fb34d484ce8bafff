package forms_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-auth-portal/forms"
	"github.com/jrsteele09/go-auth-portal/identity"
	"github.com/jrsteele09/go-auth-portal/internal/config"
	"github.com/jrsteele09/go-auth-portal/notice"
	"github.com/jrsteele09/go-auth-portal/registration"
	"github.com/jrsteele09/go-auth-portal/session"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "jane.doe@example.com"
	testPassword = "password123"
	testToken    = "abc123"
	testLanding  = "/documents"
	minPassword  = 8
)

// fakeSessions signs in testEmail/testPassword and fails everything else
// with the configured code.
type fakeSessions struct {
	calls   int
	code    string
	err     error
	noURL   bool
	lastURL string
}

func (f *fakeSessions) SignIn(_ context.Context, email, password, callbackURL string) (session.SignInResult, error) {
	f.calls++
	f.lastURL = callbackURL
	if f.err != nil {
		return session.SignInResult{}, f.err
	}
	if f.code != "" {
		return session.SignInResult{}, &identity.ExchangeError{Code: f.code}
	}
	res := session.SignInResult{SessionID: "sess-1", User: session.User{ID: "user-1", Email: email}, URL: callbackURL}
	if f.noURL {
		res.URL = ""
	}
	return res, nil
}

type fakeCommitter struct {
	requests []registration.Request
	err      error
}

func (f *fakeCommitter) Commit(_ context.Context, req registration.Request) error {
	f.requests = append(f.requests, req)
	return f.err
}

type testFixture struct {
	sessions  *fakeSessions
	committer *fakeCommitter
	signIn    *forms.SignIn
	signUp    *forms.SignUp
}

func setupTestFixture(t *testing.T, collectAddress bool) *testFixture {
	t.Helper()

	f := &testFixture{
		sessions:  &fakeSessions{},
		committer: &fakeCommitter{},
	}
	f.signIn = forms.NewSignIn(f.sessions, f.committer, minPassword, testLanding)
	f.signUp = forms.NewSignUp(f.committer, minPassword, collectAddress)
	return f
}

func validProfile() forms.Profile {
	return forms.Profile{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           testEmail,
		Password:        testPassword,
		ConfirmPassword: testPassword,
	}
}

func validAddress() forms.Address {
	return forms.Address{Street: "1 Main St", City: "Berlin", Province: "BE", PostalCode: "10115", Country: "DE", Phone: "+49 30 123"}
}

func TestSignIn_Validation(t *testing.T) {
	tests := []struct {
		name   string
		creds  forms.Credentials
		fields map[string]string
	}{
		{name: "bad email", creds: forms.Credentials{Email: "jane", Password: testPassword}, fields: map[string]string{forms.FieldEmail: forms.MsgInvalidEmail}},
		{name: "no domain dot", creds: forms.Credentials{Email: "jane@localhost", Password: testPassword}, fields: map[string]string{forms.FieldEmail: forms.MsgInvalidEmail}},
		{name: "display name", creds: forms.Credentials{Email: "Jane <jane@example.com>", Password: testPassword}, fields: map[string]string{forms.FieldEmail: forms.MsgInvalidEmail}},
		{name: "short password", creds: forms.Credentials{Email: testEmail, Password: "1234567"}, fields: map[string]string{forms.FieldPassword: "Password must be at least 8 characters long"}},
		{name: "both", creds: forms.Credentials{}, fields: map[string]string{forms.FieldEmail: forms.MsgInvalidEmail, forms.FieldPassword: "Password must be at least 8 characters long"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t, false)
			out := f.signIn.Submit(context.Background(), tt.creds, testToken)

			require.Equal(t, forms.FieldErrors(tt.fields), out.FieldErrors)
			require.Empty(t, out.Redirect)
			require.Zero(t, f.sessions.calls)
			require.Empty(t, f.committer.requests)
		})
	}
}

func TestSignIn_DefaultMinimumReachesExchange(t *testing.T) {
	cfg, err := config.New()
	require.NoError(t, err)

	f := setupTestFixture(t, false)
	signIn := forms.NewSignIn(f.sessions, f.committer, cfg.GetPasswordMinLength(), cfg.GetLoginRedirectPath())

	out := signIn.Submit(context.Background(), forms.Credentials{Email: "a@b.com", Password: "secret1"}, "")
	require.Empty(t, out.FieldErrors)
	require.Equal(t, "/documents", out.Redirect)
	require.Equal(t, 1, f.sessions.calls)
	require.Empty(t, f.committer.requests)
}

func TestSignIn_NoTokenRedirectsToLanding(t *testing.T) {
	f := setupTestFixture(t, false)

	out := f.signIn.Submit(context.Background(), forms.Credentials{Email: testEmail, Password: testPassword}, "")
	require.Equal(t, testLanding, out.Redirect)
	require.Equal(t, testLanding, f.sessions.lastURL)
	require.NotNil(t, out.Session)
	require.Empty(t, out.Message)
	require.Empty(t, out.Notices)
	require.Empty(t, f.committer.requests)
}

func TestSignIn_TokenCommitsOnceBeforeRedirect(t *testing.T) {
	f := setupTestFixture(t, false)

	out := f.signIn.Submit(context.Background(), forms.Credentials{Email: testEmail, Password: testPassword}, testToken)
	require.Equal(t, testLanding, out.Redirect)
	require.Len(t, f.committer.requests, 1)
	require.Equal(t, registration.Request{Email: testEmail, Password: testPassword, QRCode: testToken}, f.committer.requests[0])
	require.Equal(t, []notice.Notice{notice.NewSuccess(notice.MsgRegistrationSuccessful)}, out.Notices)
}

func TestSignIn_CommitFailureBlocksRedirect(t *testing.T) {
	f := setupTestFixture(t, false)
	f.committer.err = errors.New("invalid qr code")

	out := f.signIn.Submit(context.Background(), forms.Credentials{Email: testEmail, Password: testPassword}, testToken)
	require.Empty(t, out.Redirect)
	require.NotNil(t, out.Session)
	require.Len(t, f.committer.requests, 1)
	require.Equal(t, []notice.Notice{notice.NewError(notice.MsgRegistrationFailed)}, out.Notices)
}

func TestSignIn_ErrorCodes(t *testing.T) {
	tests := []struct {
		code     string
		message  string
		redirect string
	}{
		{code: forms.CodeCredentialsNotFound, message: "The email or password provided is incorrect"},
		{code: forms.CodeIncorrectEmailPassword, message: "The email or password provided is incorrect"},
		{code: forms.CodeUserMissingPassword, message: "This account appears to be using a social login method, please sign in using that method"},
		{code: forms.CodeIncorrectTwoFactorCode, message: "The two-factor authentication code provided is incorrect"},
		{code: forms.CodeIncorrectTwoFactorBackupCode, message: "The backup code provided is incorrect"},
		{code: forms.CodeUnverifiedEmail, message: "This account has not been verified. Please verify your account before signing in.", redirect: forms.UnverifiedAccountPath},
		{code: "ACCOUNT_DISABLED", message: forms.MsgUnknownError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			f := setupTestFixture(t, false)
			f.sessions.code = tt.code

			out := f.signIn.Submit(context.Background(), forms.Credentials{Email: testEmail, Password: testPassword}, testToken)
			require.Equal(t, tt.message, out.Message)
			require.Equal(t, tt.redirect, out.Redirect)
			require.Nil(t, out.Session)
			require.Equal(t, []notice.Notice{notice.NewError(notice.MsgUnableToSignIn)}, out.Notices)
			require.Empty(t, f.committer.requests)
		})
	}
}

func TestSignIn_NonExchangeErrorIsUnknown(t *testing.T) {
	f := setupTestFixture(t, false)
	f.sessions.err = errors.New("disk full")

	out := f.signIn.Submit(context.Background(), forms.Credentials{Email: testEmail, Password: testPassword}, "")
	require.Equal(t, forms.MsgUnknownError, out.Message)
	require.Empty(t, out.Redirect)
}

func TestSignIn_MissingTargetIsUnknownError(t *testing.T) {
	f := setupTestFixture(t, false)
	f.sessions.noURL = true

	out := f.signIn.Submit(context.Background(), forms.Credentials{Email: testEmail, Password: testPassword}, testToken)
	require.Equal(t, forms.MsgUnknownError, out.Message)
	require.Empty(t, out.Redirect)
	require.Empty(t, f.committer.requests)
}

func TestSignUp_PasswordMismatch(t *testing.T) {
	f := setupTestFixture(t, false)
	p := validProfile()
	p.ConfirmPassword = "password124"

	out := f.signUp.Submit(context.Background(), p, testToken)
	require.Equal(t, forms.FieldErrors{forms.FieldConfirmPassword: forms.MsgPasswordsMismatch}, out.FieldErrors)
	require.Empty(t, f.committer.requests)
}

func TestSignUp_RequiredNames(t *testing.T) {
	f := setupTestFixture(t, false)
	p := validProfile()
	p.FirstName = " "
	p.LastName = ""

	out := f.signUp.Submit(context.Background(), p, "")
	require.Equal(t, forms.MsgFirstNameRequired, out.FieldErrors.Get(forms.FieldFirstName))
	require.Equal(t, forms.MsgLastNameRequired, out.FieldErrors.Get(forms.FieldLastName))
	require.Empty(t, f.committer.requests)
}

func TestSignUp_Success(t *testing.T) {
	f := setupTestFixture(t, false)

	out := f.signUp.Submit(context.Background(), validProfile(), testToken)
	require.Empty(t, out.FieldErrors)
	require.Equal(t, "/auth/signin?token=abc123", out.Redirect)
	require.Equal(t, []notice.Notice{notice.NewSuccess(notice.MsgRegistrationSuccessful)}, out.Notices)

	require.Len(t, f.committer.requests, 1)
	req := f.committer.requests[0]
	require.Equal(t, testToken, req.QRCode)
	require.Equal(t, "Jane", req.FirstName)
	require.Nil(t, req.ShippingAddress)
}

func TestSignUp_SuccessWithoutToken(t *testing.T) {
	f := setupTestFixture(t, false)

	out := f.signUp.Submit(context.Background(), validProfile(), "")
	require.Equal(t, "/auth/signin", out.Redirect)
	require.Empty(t, f.committer.requests[0].QRCode)
}

func TestSignUp_Failure(t *testing.T) {
	f := setupTestFixture(t, false)
	f.committer.err = errors.New("conflict")

	out := f.signUp.Submit(context.Background(), validProfile(), testToken)
	require.Empty(t, out.Redirect)
	require.Equal(t, forms.MsgSignUpFailed, out.Message)
	require.Equal(t, []notice.Notice{notice.NewError(notice.MsgRegistrationFailed)}, out.Notices)
	require.Len(t, f.committer.requests, 1)
}

func TestSignUp_AddressMode(t *testing.T) {
	f := setupTestFixture(t, true)
	require.True(t, f.signUp.CollectsAddress())

	p := validProfile()
	out := f.signUp.Submit(context.Background(), p, testToken)
	require.Equal(t, "Street is required", out.FieldErrors.Get(forms.AddressField("shipping", "street")))
	require.Equal(t, "Phone is required", out.FieldErrors.Get(forms.AddressField("shipping", "phone")))
	require.Empty(t, out.FieldErrors.Get(forms.AddressField("billing", "street")))
	require.Empty(t, f.committer.requests)

	p.Shipping = validAddress()
	p.BillingDiffers = true
	out = f.signUp.Submit(context.Background(), p, testToken)
	require.Equal(t, "Postal code is required", out.FieldErrors.Get(forms.AddressField("billing", "postalCode")))
	require.Empty(t, f.committer.requests)

	p.Billing = validAddress()
	p.Billing.City = "Hamburg"
	out = f.signUp.Submit(context.Background(), p, testToken)
	require.Empty(t, out.FieldErrors)
	require.Len(t, f.committer.requests, 1)
	require.Equal(t, "Berlin", f.committer.requests[0].ShippingAddress.City)
	require.Equal(t, "Hamburg", f.committer.requests[0].BillingAddress.City)
}

func TestSignUp_BillingIgnoredWhenSwitchOff(t *testing.T) {
	f := setupTestFixture(t, true)
	p := validProfile()
	p.Shipping = validAddress()
	p.Billing = forms.Address{City: "ignored"}

	out := f.signUp.Submit(context.Background(), p, "")
	require.Empty(t, out.FieldErrors)
	require.Nil(t, f.committer.requests[0].BillingAddress)
}

func TestCheckReturning_CookieMarker(t *testing.T) {
	first := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/signin", nil)
	require.False(t, forms.CheckReturning(forms.NewCookieMarker(first, r)))

	cookies := first.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, forms.FirstVisitCookie, cookies[0].Name)

	second := httptest.NewRecorder()
	r2 := httptest.NewRequest(http.MethodGet, "/auth/signin", nil)
	r2.AddCookie(cookies[0])
	require.True(t, forms.CheckReturning(forms.NewCookieMarker(second, r2)))
	require.Empty(t, second.Result().Cookies())
}

func TestPasswordError(t *testing.T) {
	require.Equal(t, "Password must be at least 8 characters long", forms.PasswordError("short", 8))
	require.Empty(t, forms.PasswordError("long enough", 8))
	require.Equal(t, "Password must be at least 12 characters long", forms.PasswordError("long enough", 12))
}
