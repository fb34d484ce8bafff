package consentvisit

import "sync"

// Locks serialises the requests that touch one visit, so a visit is
// committed by at most one request at a time.
type Locks struct {
	mu    sync.Mutex
	locks map[string]*visitLock
}

type visitLock struct {
	mu   sync.Mutex
	refs int
}

func NewLocks() *Locks {
	return &Locks{locks: make(map[string]*visitLock)}
}

// Lock blocks until no other request holds the visit and returns the
// function that releases it.
func (l *Locks) Lock(id string) (unlock func()) {
	l.mu.Lock()
	vl, ok := l.locks[id]
	if !ok {
		vl = &visitLock{}
		l.locks[id] = vl
	}
	vl.refs++
	l.mu.Unlock()

	vl.mu.Lock()
	return func() {
		vl.mu.Unlock()

		l.mu.Lock()
		vl.refs--
		if vl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
