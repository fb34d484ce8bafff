package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-portal/identity"
	apperrors "github.com/jrsteele09/go-auth-portal/internal/errors"
	"github.com/jrsteele09/go-auth-portal/session"
	"github.com/jrsteele09/go-auth-portal/session/sqlite"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*sqlite.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data", "sessions.db")
	store, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store, path
}

func TestStore_RoundTrip(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	in := session.Session{
		ID: "sess-1",
		User: session.User{
			ID:      "user-1",
			Name:    "Jane Doe",
			Email:   "jane.doe@example.com",
			Address: &identity.Address{Locality: "Berlin", Country: "DE"},
		},
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenExpiry:  now.Add(5 * time.Minute),
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Hour),
	}
	require.NoError(t, store.Upsert(ctx, in))

	out, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, in, out)

	in.RefreshToken = "rotated"
	require.NoError(t, store.Upsert(ctx, in))
	out, err = store.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, "rotated", out.RefreshToken)

	require.NoError(t, store.Delete(ctx, "sess-1"))
	_, err = store.Get(ctx, "sess-1")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestStore_DeleteExpired(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Upsert(ctx, session.Session{ID: "old", CreatedAt: now, ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, store.Upsert(ctx, session.Session{ID: "new", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))

	n, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = store.Get(ctx, "new")
	require.NoError(t, err)
}

func TestStore_ReopenKeepsSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	ctx := context.Background()

	store, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, session.Session{ID: "sess-1", CreatedAt: time.Now()}))
	require.NoError(t, store.Close())

	store, err = sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(ctx, "sess-1")
	require.NoError(t, err)
}

func TestStore_WorksWithManager(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	manager := session.NewManager(store, stubIdentity{}, time.Hour)
	res, err := manager.SignIn(ctx, "jane.doe@example.com", "password123", "/documents")
	require.NoError(t, err)

	s, err := manager.Current(ctx, res.SessionID)
	require.NoError(t, err)
	require.NotNil(t, s)
	require.Equal(t, "user-1", s.User.ID)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := sqlite.Open(context.Background(), " ")
	require.Error(t, err)
}

type stubIdentity struct{}

func (stubIdentity) ExchangeCredentials(context.Context, string, string) (*identity.TokenSet, error) {
	return &identity.TokenSet{RefreshToken: "refresh", Claims: identity.Claims{Subject: "user-1"}}, nil
}

func (stubIdentity) Logout(context.Context, string) error { return nil }
