package config

import (
	"strings"
	"time"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreSQLite = "sqlite"

	defaultSessionSecret = "dev-only-session-secret"
)

type SessionConfig interface {
	GetSessionSecret() string
	GetSessionStore() string
	GetSessionDBPath() string
	GetSessionMaxAge() time.Duration
	GetCookieDomain() string
	GetConsentVisitTTL() time.Duration
}

type Sessions struct {
	SessionSecret   string        `env:"SESSION_SECRET" envDefault:"dev-only-session-secret"`
	SessionStore    string        `env:"SESSION_STORE" envDefault:"memory"`
	SessionDBPath   string        `env:"SESSION_DB_PATH" envDefault:"./data/sessions.db"`
	SessionMaxAge   time.Duration `env:"SESSION_MAX_AGE" envDefault:"720h"`
	CookieDomain    string        `env:"COOKIE_DOMAIN"`
	ConsentVisitTTL time.Duration `env:"CONSENT_VISIT_TTL" envDefault:"15m"`
}

var _ SessionConfig = Sessions{}

func (s Sessions) GetSessionSecret() string {
	return s.SessionSecret
}

func (s Sessions) GetSessionStore() string {
	return strings.ToLower(strings.TrimSpace(s.SessionStore))
}

func (s Sessions) GetSessionDBPath() string {
	return s.SessionDBPath
}

func (s Sessions) GetSessionMaxAge() time.Duration {
	return s.SessionMaxAge
}

func (s Sessions) GetCookieDomain() string {
	return s.CookieDomain
}

func (s Sessions) GetConsentVisitTTL() time.Duration {
	return s.ConsentVisitTTL
}
