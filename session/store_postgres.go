package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on authgate.sessions, scoped to one route
// key. The pool is owned by the caller; Close here is a no-op.
type PostgresStore struct {
	pool  *pgxpool.Pool
	route string
}

// NewPostgresStore creates a Postgres-backed session store for the given
// route key and ensures the backing table exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, route string) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("session: nil db pool")
	}
	if route == "" {
		return nil, errors.New("session: empty route key")
	}

	_, err := pool.Exec(ctx, `
		CREATE SCHEMA IF NOT EXISTS authgate;
		CREATE TABLE IF NOT EXISTS authgate.sessions (
			id         TEXT PRIMARY KEY,
			route      TEXT NOT NULL,
			token_hash TEXT NOT NULL,
			username   TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			UNIQUE (route, token_hash)
		);
		CREATE INDEX IF NOT EXISTS sessions_route_expiry
			ON authgate.sessions (route, expires_at);
	`)
	if err != nil {
		return nil, err
	}

	return &PostgresStore{pool: pool, route: route}, nil
}

// Create inserts a new session row.
func (s *PostgresStore) Create(ctx context.Context, row Row) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO authgate.sessions (id, route, token_hash, username, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, row.ID, s.route, row.TokenHash, row.Username, row.CreatedAt, row.ExpiresAt)
	return err
}

// GetByTokenHash loads a session by token hash within this store's route.
func (s *PostgresStore) GetByTokenHash(ctx context.Context, tokenHash string) (Row, error) {
	var row Row

	err := s.pool.QueryRow(ctx, `
		SELECT id, token_hash, username, created_at, expires_at
		FROM authgate.sessions
		WHERE route = $1 AND token_hash = $2
	`, s.route, tokenHash).Scan(
		&row.ID,
		&row.TokenHash,
		&row.Username,
		&row.CreatedAt,
		&row.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Row{}, ErrNotFound
	}
	if err != nil {
		return Row{}, err
	}

	return row, nil
}

// Delete removes a session by ID.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM authgate.sessions
		WHERE route = $1 AND id = $2
	`, s.route, id)
	return err
}

// DeleteExpired removes sessions whose expiry is at or before now.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM authgate.sessions
		WHERE route = $1 AND expires_at <= $2
	`, s.route, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// Count reports the number of sessions still valid at now.
func (s *PostgresStore) Count(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM authgate.sessions
		WHERE route = $1 AND expires_at > $2
	`, s.route, now).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Close is a no-op: the pool lifecycle belongs to the caller.
func (s *PostgresStore) Close() error { return nil }
