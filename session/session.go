// Package session keeps signed-in users on the server side. The browser only
// holds the session id cookie; tokens never leave the session record.
package session

import (
	"context"
	"time"

	"github.com/jrsteele09/go-auth-portal/identity"
)

// CookieName is the cookie carrying the session id.
const CookieName = "portal.session-token"

// User holds the claims exposed to pages and the session endpoint.
type User struct {
	ID      string            `json:"id"`
	Name    string            `json:"name,omitempty"`
	Email   string            `json:"email,omitempty"`
	Image   string            `json:"image,omitempty"`
	Address *identity.Address `json:"address,omitempty"`
}

type Session struct {
	ID   string
	User User

	// Tokens issued by the identity provider
	AccessToken  string
	RefreshToken string
	IDToken      string
	TokenExpiry  time.Time

	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Repo stores session records. Get returns errors.ErrSessionNotFound for an
// unknown id.
type Repo interface {
	Upsert(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

func userFromClaims(c identity.Claims) User {
	name := c.Name
	if name == "" {
		name = c.PreferredUsername
	}
	return User{
		ID:      c.Subject,
		Name:    name,
		Email:   c.Email,
		Image:   c.Picture,
		Address: c.Address,
	}
}
