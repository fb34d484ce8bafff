package config

import (
	"strings"
	"time"
)

// IdentityConfig describes the Keycloak realm used for credential exchange.
type IdentityConfig interface {
	GetIssuerURL() string
	GetClientID() string
	GetClientSecret() string
	GetScopes() []string
	GetUpstreamTimeout() time.Duration
}

// RegistrationConfig describes the QR-code registration backend.
type RegistrationConfig interface {
	GetRegistrationBackendURL() string
	GetCentralServerURL() string
}

type Identity struct {
	IssuerURL       string        `env:"KEYCLOAK_ISSUER" envDefault:"http://localhost:8081/realms/portal"`
	ClientID        string        `env:"KEYCLOAK_CLIENT_ID" envDefault:"auth-portal"`
	ClientSecret    string        `env:"KEYCLOAK_CLIENT_SECRET"`
	Scopes          []string      `env:"KEYCLOAK_SCOPES" envSeparator:"," envDefault:"openid,profile,email,address"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`
}

var _ IdentityConfig = Identity{}

func (i Identity) GetIssuerURL() string {
	return strings.TrimRight(i.IssuerURL, "/")
}

func (i Identity) GetClientID() string {
	return i.ClientID
}

func (i Identity) GetClientSecret() string {
	return i.ClientSecret
}

func (i Identity) GetScopes() []string {
	return i.Scopes
}

func (i Identity) GetUpstreamTimeout() time.Duration {
	return i.UpstreamTimeout
}

type Registration struct {
	BackendURL string `env:"REGISTRATION_BACKEND_URL" envDefault:"http://localhost:8093/api/v1/qrcode-app"`
	CentralURL string `env:"CENTRAL_SERVER_URL" envDefault:"http://localhost:8094"`
}

var _ RegistrationConfig = Registration{}

func (r Registration) GetRegistrationBackendURL() string {
	return strings.TrimRight(r.BackendURL, "/")
}

func (r Registration) GetCentralServerURL() string {
	return strings.TrimRight(r.CentralURL, "/")
}
