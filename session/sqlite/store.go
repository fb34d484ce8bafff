// Package sqlite persists portal sessions in a SQLite database so they
// survive restarts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-auth-portal/internal/errors"
	"github.com/jrsteele09/go-auth-portal/session"
	"github.com/jrsteele09/go-auth-portal/session/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store is a session.Repo backed by SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ session.Repo = (*Store)(nil)

// Open opens the database at path, creating it and its directory if needed,
// and applies pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	dsn := "file:" + cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Upsert(ctx context.Context, sess session.Session) error {
	if s == nil || s.sqlDB == nil {
		return apperrors.ErrNotConfigured
	}
	if sess.ID == "" {
		return fmt.Errorf("session id is required")
	}

	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO sessions (id, user_json, access_token, refresh_token, id_token, token_expiry, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    user_json = excluded.user_json,
		    access_token = excluded.access_token,
		    refresh_token = excluded.refresh_token,
		    id_token = excluded.id_token,
		    token_expiry = excluded.token_expiry,
		    expires_at = excluded.expires_at`,
		sess.ID,
		string(userJSON),
		sess.AccessToken,
		sess.RefreshToken,
		sess.IDToken,
		timeToUnixMillis(sess.TokenExpiry),
		timeToUnixMillis(sess.CreatedAt),
		timeToUnixMillis(sess.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (session.Session, error) {
	if s == nil || s.sqlDB == nil {
		return session.Session{}, apperrors.ErrNotConfigured
	}
	if id == "" {
		return session.Session{}, fmt.Errorf("session id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, user_json, access_token, refresh_token, id_token, token_expiry, created_at, expires_at
		 FROM sessions
		 WHERE id = ?`,
		id,
	)

	var (
		sess        session.Session
		userJSON    string
		tokenExpiry int64
		createdAt   int64
		expiresAt   int64
	)
	if err := row.Scan(
		&sess.ID,
		&userJSON,
		&sess.AccessToken,
		&sess.RefreshToken,
		&sess.IDToken,
		&tokenExpiry,
		&createdAt,
		&expiresAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Session{}, apperrors.ErrSessionNotFound
		}
		return session.Session{}, fmt.Errorf("get session: %w", err)
	}

	if err := json.Unmarshal([]byte(userJSON), &sess.User); err != nil {
		return session.Session{}, fmt.Errorf("decode session user: %w", err)
	}
	sess.TokenExpiry = unixMillisToTime(tokenExpiry)
	sess.CreatedAt = unixMillisToTime(createdAt)
	sess.ExpiresAt = unixMillisToTime(expiresAt)
	return sess, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if s == nil || s.sqlDB == nil {
		return apperrors.ErrNotConfigured
	}
	if id == "" {
		return fmt.Errorf("session id is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	if s == nil || s.sqlDB == nil {
		return 0, apperrors.ErrNotConfigured
	}

	res, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at > 0 AND expires_at <= ?`,
		timeToUnixMillis(now),
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return int(n), nil
}

func timeToUnixMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixMilli()
}

func unixMillisToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
