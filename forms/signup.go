package forms

import (
	"context"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-auth-portal/notice"
	"github.com/jrsteele09/go-auth-portal/registration"
	"github.com/rs/zerolog/log"
)

const signInPath = "/auth/signin"

// Address is a postal address as entered in the form.
type Address struct {
	Street     string
	City       string
	Province   string
	PostalCode string
	Country    string
	Phone      string
}

// Profile is the sign-up form. Shipping and billing are only read when
// addresses are collected.
type Profile struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	Shipping        Address
	Billing         Address
	BillingDiffers  bool
}

type SignUpOutcome struct {
	FieldErrors FieldErrors
	Message     string
	Notices     []notice.Notice
	Redirect    string
}

type SignUp struct {
	committer      Committer
	minPassword    int
	collectAddress bool
}

func NewSignUp(committer Committer, minPassword int, collectAddress bool) *SignUp {
	return &SignUp{
		committer:      committer,
		minPassword:    minPassword,
		collectAddress: collectAddress,
	}
}

func (s *SignUp) CollectsAddress() bool {
	return s.collectAddress
}

// Submit validates the profile and registers it with one commit.
func (s *SignUp) Submit(ctx context.Context, p Profile, token string) SignUpOutcome {
	errs := s.validate(p)
	if errs.Any() {
		return SignUpOutcome{FieldErrors: errs}
	}

	req := registration.Request{
		Email:     p.Email,
		Password:  p.Password,
		QRCode:    token,
		FirstName: strings.TrimSpace(p.FirstName),
		LastName:  strings.TrimSpace(p.LastName),
	}
	if s.collectAddress {
		req.ShippingAddress = p.Shipping.request()
		if p.BillingDiffers {
			req.BillingAddress = p.Billing.request()
		}
	}

	if err := s.committer.Commit(ctx, req); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("sign up failed")
		return SignUpOutcome{
			Message: MsgSignUpFailed,
			Notices: []notice.Notice{notice.NewError(notice.MsgRegistrationFailed)},
		}
	}

	redirect := signInPath
	if token != "" {
		redirect += "?" + url.Values{"token": {token}}.Encode()
	}
	return SignUpOutcome{
		Notices:  []notice.Notice{notice.NewSuccess(notice.MsgRegistrationSuccessful)},
		Redirect: redirect,
	}
}

func (s *SignUp) validate(p Profile) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(p.FirstName) == "" {
		errs[FieldFirstName] = MsgFirstNameRequired
	}
	if strings.TrimSpace(p.LastName) == "" {
		errs[FieldLastName] = MsgLastNameRequired
	}
	validateEmail(errs, p.Email)
	validatePassword(errs, p.Password, s.minPassword)
	if p.Password != p.ConfirmPassword {
		errs[FieldConfirmPassword] = MsgPasswordsMismatch
	}

	if s.collectAddress {
		p.Shipping.validate(errs, "shipping")
		if p.BillingDiffers {
			p.Billing.validate(errs, "billing")
		}
	}
	return errs
}

var addressFields = []struct {
	name  string
	label string
	value func(Address) string
}{
	{"street", "Street", func(a Address) string { return a.Street }},
	{"city", "City", func(a Address) string { return a.City }},
	{"province", "Province", func(a Address) string { return a.Province }},
	{"postalCode", "Postal code", func(a Address) string { return a.PostalCode }},
	{"country", "Country", func(a Address) string { return a.Country }},
	{"phone", "Phone", func(a Address) string { return a.Phone }},
}

// AddressField is the form field name for part of an address, e.g.
// "shipping.postalCode".
func AddressField(prefix, name string) string {
	return prefix + "." + name
}

func (a Address) validate(errs FieldErrors, prefix string) {
	for _, f := range addressFields {
		if strings.TrimSpace(f.value(a)) == "" {
			errs[AddressField(prefix, f.name)] = f.label + " is required"
		}
	}
}

func (a Address) request() *registration.Address {
	return &registration.Address{
		Street:     strings.TrimSpace(a.Street),
		City:       strings.TrimSpace(a.City),
		Province:   strings.TrimSpace(a.Province),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
		Phone:      strings.TrimSpace(a.Phone),
	}
}
