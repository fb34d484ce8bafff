package consent

import (
	"github.com/jrsteele09/go-auth-portal/notice"
	"github.com/jrsteele09/go-auth-portal/registration"
)

// Snapshot is the part of a visit kept between requests. The signed-in user
// is not part of it; it is read from the session on every request.
type Snapshot struct {
	Token     string
	Validity  registration.Validity
	Accepted  bool
	Committed bool
	Outcome   *notice.Notice
}

func (f *Flow) Snapshot() Snapshot {
	s := Snapshot{
		Token:     f.token,
		Validity:  f.validity,
		Accepted:  f.accepted,
		Committed: f.committed,
	}
	if f.outcome != nil {
		n := *f.outcome
		s.Outcome = &n
	}
	return s
}

// Restore continues a visit from s. A snapshot for another token is ignored.
func (f *Flow) Restore(s Snapshot) bool {
	if s.Token != f.token {
		return false
	}
	f.validity = s.Validity
	f.accepted = s.Accepted
	f.committed = s.Committed
	f.outcome = nil
	if s.Outcome != nil {
		n := *s.Outcome
		f.outcome = &n
	}
	return true
}
