// Package consentvisit keeps the state of open consent page visits between
// requests. A visit expires after a short TTL.
package consentvisit

import (
	"time"

	"github.com/jrsteele09/go-auth-portal/consent"
)

type Visit struct {
	ID        string
	Snapshot  consent.Snapshot
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Repo stores visits by id. Get returns errors.ErrVisitNotFound for unknown
// or expired visits.
type Repo interface {
	Upsert(v Visit) error
	Get(id string) (Visit, error)
	Delete(id string) error
}
