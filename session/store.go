package session

import (
	"context"
	"time"
)

// Row is one stored session.
type Row struct {
	ID        string
	TokenHash string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store abstracts persistence for session state. Implementations must be safe
// under concurrent requests.
//
// Persistent implementations are scoped to a single route key at
// construction time, so two guards sharing a database still keep disjoint
// session sets.
type Store interface {
	// Create inserts a new session row.
	Create(ctx context.Context, row Row) error

	// GetByTokenHash loads a session by its token hash.
	// Returns ErrNotFound when absent.
	GetByTokenHash(ctx context.Context, tokenHash string) (Row, error)

	// Delete removes a session by ID. Missing rows are not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes all sessions whose expiry is at or before now
	// and reports how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)

	// Count reports the number of sessions still valid at now.
	Count(ctx context.Context, now time.Time) (int, error)

	// Close releases store resources.
	Close() error
}
