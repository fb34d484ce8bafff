package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-portal/forms"
	"github.com/jrsteele09/go-auth-portal/notice"
	"github.com/rs/zerolog/log"
)

// agreedParam is set once the visitor has accepted the service agreement on
// the sign-in or sign-up page.
const agreedParam = "agreed"

type signInPage struct {
	basePage
	Token       string
	Agreed      bool
	WelcomeBack bool
	Email       string
	Errors      forms.FieldErrors
	Message     string
	ActionURL   string
	SignUpURL   string
	MinPassword int
}

type signUpPage struct {
	basePage
	Token          string
	Agreed         bool
	Profile        forms.Profile
	Errors         forms.FieldErrors
	Message        string
	ActionURL      string
	SignInURL      string
	MinPassword    int
	CollectAddress bool
}

func (s *Server) newSignInPage(w http.ResponseWriter, r *http.Request, token string) signInPage {
	return signInPage{
		basePage:    s.newBasePage(w, r, "Sign in"),
		Token:       token,
		WelcomeBack: forms.CheckReturning(forms.NewCookieMarker(w, r)),
		Errors:      forms.FieldErrors{},
		ActionURL:   withToken(RouteSignIn, token),
		SignUpURL:   withToken(RouteSignUp, token),
		MinPassword: s.config.GetPasswordMinLength(),
	}
}

func (s *Server) newSignUpPage(w http.ResponseWriter, r *http.Request, token string) signUpPage {
	return signUpPage{
		basePage:       s.newBasePage(w, r, "Sign up"),
		Token:          token,
		Errors:         forms.FieldErrors{},
		ActionURL:      withToken(RouteSignUp, token),
		SignInURL:      withToken(RouteSignIn, token),
		MinPassword:    s.config.GetPasswordMinLength(),
		CollectAddress: s.signUp.CollectsAddress(),
	}
}

// SignInPageHandler renders the agreement gate or the sign-in form
func (s *Server) SignInPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("signin.html")
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		data := s.newSignInPage(w, r, q.Get("token"))
		data.Agreed = q.Get(agreedParam) == "1"
		render(w, r, tmpl, http.StatusOK, data)
	}
}

// SignInSubmitHandler signs the user in and binds a registration token when
// one was carried through the form.
func (s *Server) SignInSubmitHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("signin.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		token := r.FormValue("token")
		creds := forms.Credentials{
			Email:    strings.TrimSpace(r.PostFormValue("email")),
			Password: r.PostFormValue("password"),
		}

		out := s.signIn.Submit(r.Context(), creds, token)
		if out.Session != nil {
			// The replaced session still holds a realm refresh token.
			if old := sessionIDFrom(r); old != "" && old != out.Session.SessionID {
				if err := s.sessions.SignOut(r.Context(), old); err != nil {
					log.Ctx(r.Context()).Warn().Err(err).Msg("failed to end replaced session")
				}
			}
			s.setSessionCookie(w, r, out.Session.SessionID)
		}

		if out.Redirect != "" {
			notices := out.Notices
			if out.Message != "" {
				notices = append(notices, notice.NewError(out.Message))
			}
			s.notices.add(w, r, notices...)
			redirectSuccess(w, r, out.Redirect)
			return
		}

		data := s.newSignInPage(w, r, token)
		data.Agreed = true
		data.Email = creds.Email
		data.Message = out.Message
		data.Notices = append(data.Notices, out.Notices...)
		if out.FieldErrors != nil {
			data.Errors = out.FieldErrors
		}

		status := http.StatusOK
		if data.Errors.Any() || data.Message != "" {
			status = http.StatusUnprocessableEntity
		}
		render(w, r, tmpl, status, data)
	}
}

// SignUpPageHandler renders the agreement gate or the sign-up form
func (s *Server) SignUpPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("signup.html")
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		data := s.newSignUpPage(w, r, q.Get("token"))
		data.Agreed = q.Get(agreedParam) == "1"
		render(w, r, tmpl, http.StatusOK, data)
	}
}

// SignUpSubmitHandler registers a new account through the central server
func (s *Server) SignUpSubmitHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("signup.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		token := r.FormValue("token")
		profile := profileFromForm(r)

		out := s.signUp.Submit(r.Context(), profile, token)
		if out.Redirect != "" {
			s.notices.add(w, r, out.Notices...)
			redirectSuccess(w, r, out.Redirect)
			return
		}

		// Passwords are never echoed back.
		profile.Password = ""
		profile.ConfirmPassword = ""

		data := s.newSignUpPage(w, r, token)
		data.Agreed = true
		data.Profile = profile
		data.Message = out.Message
		data.Notices = append(data.Notices, out.Notices...)
		if out.FieldErrors != nil {
			data.Errors = out.FieldErrors
		}
		render(w, r, tmpl, http.StatusUnprocessableEntity, data)
	}
}

// SignOutHandler ends the session at Keycloak and clears the cookie
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id := sessionIDFrom(r); id != "" {
			if err := s.sessions.SignOut(r.Context(), id); err != nil {
				log.Ctx(r.Context()).Error().Err(err).Msg("sign out failed")
			}
		}
		s.clearSessionCookie(w, r)
		s.notices.add(w, r, notice.NewInfo(notice.MsgSignedOut))
		redirectSuccess(w, r, RouteIndex)
	}
}

func profileFromForm(r *http.Request) forms.Profile {
	return forms.Profile{
		FirstName:       r.PostFormValue(forms.FieldFirstName),
		LastName:        r.PostFormValue(forms.FieldLastName),
		Email:           strings.TrimSpace(r.PostFormValue(forms.FieldEmail)),
		Password:        r.PostFormValue(forms.FieldPassword),
		ConfirmPassword: r.PostFormValue(forms.FieldConfirmPassword),
		Shipping:        addressFromForm(r, "shipping"),
		Billing:         addressFromForm(r, "billing"),
		BillingDiffers:  r.PostFormValue("billingDiffers") != "",
	}
}

func addressFromForm(r *http.Request, prefix string) forms.Address {
	field := func(name string) string {
		return r.PostFormValue(forms.AddressField(prefix, name))
	}
	return forms.Address{
		Street:     field("street"),
		City:       field("city"),
		Province:   field("province"),
		PostalCode: field("postalCode"),
		Country:    field("country"),
		Phone:      field("phone"),
	}
}

type addressFormField struct {
	Name  string
	Label string
	Value string
}

// addressFormData feeds the address fieldset of the sign-up page.
type addressFormData struct {
	Prefix string
	Legend string
	Fields []addressFormField
	Errors forms.FieldErrors
}

func addressForm(prefix, legend string, a forms.Address, errs forms.FieldErrors) addressFormData {
	return addressFormData{
		Prefix: prefix,
		Legend: legend,
		Errors: errs,
		Fields: []addressFormField{
			{Name: "street", Label: "Street", Value: a.Street},
			{Name: "city", Label: "City", Value: a.City},
			{Name: "province", Label: "Province", Value: a.Province},
			{Name: "postalCode", Label: "Postal code", Value: a.PostalCode},
			{Name: "country", Label: "Country", Value: a.Country},
			{Name: "phone", Label: "Phone", Value: a.Phone},
		},
	}
}
