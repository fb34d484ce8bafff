package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	apperrors "github.com/jrsteele09/go-auth-portal/internal/errors"
)

type Config interface {
	EnvConfig
	CorsConfig
	IdentityConfig
	RegistrationConfig
	SessionConfig
	FormConfig
	TelemetryConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Identity
	Registration
	Sessions
	Forms
	Telemetry
}

// New reads the configuration from the environment, applying defaults for
// anything unset.
func New() (Config, error) {
	var c mainConfig
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("[config New] parse env: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("[config New] %w", err)
	}
	return c, nil
}

func (c mainConfig) validate() error {
	switch c.GetSessionStore() {
	case SessionStoreMemory, SessionStoreSQLite:
	default:
		return apperrors.Wrapf(apperrors.ErrUnsupportedMode, "session store %q", c.SessionStore)
	}
	if c.PasswordMinLength < 1 {
		return fmt.Errorf("PASSWORD_MIN_LENGTH must be positive, got %d", c.PasswordMinLength)
	}
	if !strings.HasPrefix(c.LoginRedirectPath, "/") {
		return fmt.Errorf("LOGIN_REDIRECT_PATH must be an absolute path, got %q", c.LoginRedirectPath)
	}
	if c.GetEnv() == "PROD" && c.SessionSecret == defaultSessionSecret {
		return fmt.Errorf("SESSION_SECRET must be set in PROD")
	}
	return nil
}
