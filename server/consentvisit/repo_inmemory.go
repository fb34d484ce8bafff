package consentvisit

import (
	"errors"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-auth-portal/internal/errors"
)

// InMemoryRepo is a thread-safe in-memory Repo. Expired visits are dropped
// lazily on access and on each write.
type InMemoryRepo struct {
	mu     sync.RWMutex
	visits map[string]Visit
	now    func() time.Time
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		visits: make(map[string]Visit),
		now:    time.Now,
	}
}

// WithClock replaces the repo's time source.
func (r *InMemoryRepo) WithClock(now func() time.Time) *InMemoryRepo {
	r.now = now
	return r
}

func (r *InMemoryRepo) Upsert(v Visit) error {
	if v.ID == "" {
		return errors.New("visit id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for id, existing := range r.visits {
		if expired(existing, now) {
			delete(r.visits, id)
		}
	}
	r.visits[v.ID] = copyVisit(v)
	return nil
}

func (r *InMemoryRepo) Get(id string) (Visit, error) {
	if id == "" {
		return Visit{}, errors.New("visit id cannot be empty")
	}

	r.mu.RLock()
	v, ok := r.visits[id]
	r.mu.RUnlock()
	if !ok {
		return Visit{}, apperrors.ErrVisitNotFound
	}
	if expired(v, r.now()) {
		_ = r.Delete(id)
		return Visit{}, apperrors.ErrVisitNotFound
	}
	return copyVisit(v), nil
}

func (r *InMemoryRepo) Delete(id string) error {
	if id == "" {
		return errors.New("visit id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.visits, id)
	return nil
}

func expired(v Visit, now time.Time) bool {
	return !v.ExpiresAt.IsZero() && !now.Before(v.ExpiresAt)
}

func copyVisit(v Visit) Visit {
	if v.Snapshot.Outcome != nil {
		n := *v.Snapshot.Outcome
		v.Snapshot.Outcome = &n
	}
	return v
}
