package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the default per-route store: a mutex-guarded map keyed by
// token hash. One instance per guarded route keeps routes isolated without
// any shared database.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[string]Row // token hash -> row
}

// NewMemoryStore constructs an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]Row)}
}

// Create inserts a new session row.
func (s *MemoryStore) Create(ctx context.Context, row Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[row.TokenHash] = row
	return nil
}

// GetByTokenHash loads a session by token hash.
func (s *MemoryStore) GetByTokenHash(ctx context.Context, tokenHash string) (Row, error) {
	if err := ctx.Err(); err != nil {
		return Row{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[tokenHash]
	if !ok {
		return Row{}, ErrNotFound
	}
	return row, nil
}

// Delete removes a session by ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for hash, row := range s.rows {
		if row.ID == id {
			delete(s.rows, hash)
			return nil
		}
	}
	return nil
}

// DeleteExpired removes sessions whose expiry is at or before now.
func (s *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for hash, row := range s.rows {
		if !row.ExpiresAt.After(now) {
			delete(s.rows, hash)
			n++
		}
	}
	return n, nil
}

// Count reports the number of sessions still valid at now.
func (s *MemoryStore) Count(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, row := range s.rows {
		if row.ExpiresAt.After(now) {
			n++
		}
	}
	return n, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// Len reports the number of live rows. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
