package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a local SQLite file, for single-binary
// deployments that want sessions to survive restarts without running a
// database server. Scoped to one route key like PostgresStore.
type SQLiteStore struct {
	db    *sql.DB
	route string
}

// NewSQLiteStore opens (or creates) the SQLite database at path and ensures
// the sessions table exists. Use ":memory:" for an ephemeral store.
func NewSQLiteStore(path, route string) (*SQLiteStore, error) {
	if route == "" {
		return nil, errors.New("session: empty route key")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// modernc.org/sqlite serializes access per connection; a single
	// connection avoids SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			route      TEXT NOT NULL,
			token_hash TEXT NOT NULL,
			username   TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL,
			UNIQUE (route, token_hash)
		);
		CREATE INDEX IF NOT EXISTS sessions_route_expiry
			ON sessions (route, expires_at);
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}

	return &SQLiteStore{db: db, route: route}, nil
}

// Create inserts a new session row.
func (s *SQLiteStore) Create(ctx context.Context, row Row) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, route, token_hash, username, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, row.ID, s.route, row.TokenHash, row.Username, row.CreatedAt.Unix(), row.ExpiresAt.Unix())
	return err
}

// GetByTokenHash loads a session by token hash within this store's route.
func (s *SQLiteStore) GetByTokenHash(ctx context.Context, tokenHash string) (Row, error) {
	var (
		row       Row
		createdAt int64
		expiresAt int64
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, token_hash, username, created_at, expires_at
		FROM sessions
		WHERE route = ? AND token_hash = ?
	`, s.route, tokenHash).Scan(
		&row.ID,
		&row.TokenHash,
		&row.Username,
		&createdAt,
		&expiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, ErrNotFound
	}
	if err != nil {
		return Row{}, err
	}

	row.CreatedAt = time.Unix(createdAt, 0).UTC()
	row.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return row, nil
}

// Delete removes a session by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE route = ? AND id = ?
	`, s.route, id)
	return err
}

// DeleteExpired removes sessions whose expiry is at or before now.
func (s *SQLiteStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE route = ? AND expires_at <= ?
	`, s.route, now.Unix())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Count reports the number of sessions still valid at now.
func (s *SQLiteStore) Count(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM sessions WHERE route = ? AND expires_at > ?
	`, s.route, now.Unix()).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }
