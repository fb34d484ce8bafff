package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-auth-portal/internal/errors"
)

// InMemoryRepo is a Repo held in process memory. Sessions do not survive a
// restart.
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]Session),
	}
}

func (r *InMemoryRepo) Upsert(_ context.Context, s Session) error {
	if s.ID == "" {
		return fmt.Errorf("session id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[s.ID] = copySession(s)
	return nil
}

func (r *InMemoryRepo) Get(_ context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, fmt.Errorf("session id is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return Session{}, apperrors.ErrSessionNotFound
	}
	return copySession(s), nil
}

func (r *InMemoryRepo) Delete(_ context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("session id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

func (r *InMemoryRepo) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func copySession(s Session) Session {
	if s.User.Address != nil {
		addr := *s.User.Address
		s.User.Address = &addr
	}
	return s
}
