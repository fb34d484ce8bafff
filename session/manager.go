package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-auth-portal/identity"
	apperrors "github.com/jrsteele09/go-auth-portal/internal/errors"
	"github.com/rs/zerolog/log"
)

const sessionIDBytes = 32

// IdentityProvider is the part of the identity client the manager needs.
type IdentityProvider interface {
	ExchangeCredentials(ctx context.Context, email, password string) (*identity.TokenSet, error)
	Logout(ctx context.Context, refreshToken string) error
}

// SignInResult is a successful sign-in. URL is the callback URL the caller
// asked for; the manager never redirects by itself.
type SignInResult struct {
	SessionID string
	User      User
	URL       string
	ExpiresAt time.Time
}

type Manager struct {
	repo   Repo
	idp    IdentityProvider
	maxAge time.Duration
	now    func() time.Time
}

func NewManager(repo Repo, idp IdentityProvider, maxAge time.Duration) *Manager {
	return &Manager{
		repo:   repo,
		idp:    idp,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// WithClock replaces the manager's time source.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// SignIn exchanges the credentials and records a new session. Exchange
// failures are returned unchanged so callers can read *identity.ExchangeError.
func (m *Manager) SignIn(ctx context.Context, email, password, callbackURL string) (SignInResult, error) {
	tokens, err := m.idp.ExchangeCredentials(ctx, email, password)
	if err != nil {
		return SignInResult{}, err
	}

	id, err := newSessionID()
	if err != nil {
		return SignInResult{}, fmt.Errorf("[Manager SignIn] session id: %w", err)
	}

	now := m.now()
	s := Session{
		ID:           id,
		User:         userFromClaims(tokens.Claims),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		IDToken:      tokens.IDToken,
		TokenExpiry:  tokens.Expiry,
		CreatedAt:    now,
		ExpiresAt:    now.Add(m.maxAge),
	}
	if err := m.repo.Upsert(ctx, s); err != nil {
		return SignInResult{}, fmt.Errorf("[Manager SignIn] store session: %w", err)
	}

	return SignInResult{
		SessionID: id,
		User:      s.User,
		URL:       callbackURL,
		ExpiresAt: s.ExpiresAt,
	}, nil
}

// Current returns the live session for id, or nil when there is none.
// Expired records are removed.
func (m *Manager) Current(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, nil
	}

	s, err := m.repo.Get(ctx, id)
	if errors.Is(err, apperrors.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[Manager Current] %w", err)
	}

	if s.Expired(m.now()) {
		if err := m.repo.Delete(ctx, id); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("failed to delete expired session")
		}
		return nil, nil
	}
	return &s, nil
}

// SignOut ends the realm session, best effort, and deletes the record.
func (m *Manager) SignOut(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	s, err := m.repo.Get(ctx, id)
	if errors.Is(err, apperrors.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("[Manager SignOut] %w", err)
	}

	if err := m.idp.Logout(ctx, s.RefreshToken); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("user", s.User.ID).Msg("identity provider logout failed")
	}

	if err := m.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("[Manager SignOut] %w", err)
	}
	return nil
}

// RunJanitor removes expired sessions every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.repo.DeleteExpired(ctx, m.now())
			if err != nil {
				log.Warn().Err(err).Msg("session cleanup failed")
				continue
			}
			if n > 0 {
				log.Debug().Int("removed", n).Msg("expired sessions removed")
			}
		}
	}
}

func newSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
