package consentvisit_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-portal/consent"
	apperrors "github.com/jrsteele09/go-auth-portal/internal/errors"
	"github.com/jrsteele09/go-auth-portal/notice"
	"github.com/jrsteele09/go-auth-portal/registration"
	"github.com/jrsteele09/go-auth-portal/server/consentvisit"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepo(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := consentvisit.NewInMemoryRepo().WithClock(func() time.Time { return now })

	outcome := notice.NewSuccess(notice.MsgRegistrationSuccessful)
	v := consentvisit.Visit{
		ID: "visit-1",
		Snapshot: consent.Snapshot{
			Token:    "abc123",
			Validity: registration.Valid,
			Outcome:  &outcome,
		},
		CreatedAt: now,
		ExpiresAt: now.Add(15 * time.Minute),
	}
	require.NoError(t, repo.Upsert(v))
	outcome.Message = "changed"

	got, err := repo.Get("visit-1")
	require.NoError(t, err)
	require.Equal(t, "abc123", got.Snapshot.Token)
	require.Equal(t, notice.MsgRegistrationSuccessful, got.Snapshot.Outcome.Message)

	got.Snapshot.Outcome.Message = "changed again"
	again, err := repo.Get("visit-1")
	require.NoError(t, err)
	require.Equal(t, notice.MsgRegistrationSuccessful, again.Snapshot.Outcome.Message)

	require.NoError(t, repo.Delete("visit-1"))
	_, err = repo.Get("visit-1")
	require.ErrorIs(t, err, apperrors.ErrVisitNotFound)
}

func TestInMemoryRepo_Expiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := consentvisit.NewInMemoryRepo().WithClock(func() time.Time { return now })

	require.NoError(t, repo.Upsert(consentvisit.Visit{ID: "visit-1", ExpiresAt: now.Add(time.Minute)}))

	now = now.Add(2 * time.Minute)
	_, err := repo.Get("visit-1")
	require.ErrorIs(t, err, apperrors.ErrVisitNotFound)
}

func TestInMemoryRepo_Validation(t *testing.T) {
	repo := consentvisit.NewInMemoryRepo()

	require.Error(t, repo.Upsert(consentvisit.Visit{}))
	_, err := repo.Get("")
	require.Error(t, err)
	require.Error(t, repo.Delete(""))
}
