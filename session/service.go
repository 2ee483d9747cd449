package session

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/oklog/ulid/v2"
)

// Service implements the session issuer: it mints opaque tokens on
// successful verification and validates them on subsequent requests.
type Service struct {
	cfg   Config
	store Store
}

// Issued is the result of issuing a session. Token is the plain opaque value
// set as the client cookie; it is never persisted.
type Issued struct {
	ID        string
	Token     string
	ExpiresAt time.Time
}

// NewService constructs a Service over the given store.
func NewService(cfg Config, store Store) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{cfg: cfg, store: store}, nil
}

// TTL reports the configured session lifetime.
func (s *Service) TTL() time.Duration { return s.cfg.TTL }

// Issue creates a new session for username and returns the plain token.
func (s *Service) Issue(ctx context.Context, now time.Time, username string) (Issued, error) {
	token, err := NewToken(s.cfg.TokenBytes)
	if err != nil {
		return Issued{}, err
	}

	row := Row{
		ID:        ulid.Make().String(),
		TokenHash: HashTokenHex(token),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.TTL),
	}
	if err := s.store.Create(ctx, row); err != nil {
		return Issued{}, err
	}

	return Issued{ID: row.ID, Token: token, ExpiresAt: row.ExpiresAt}, nil
}

// Validate resolves a presented token to its session row.
//
// The token is hashed before lookup and the stored hash is compared in
// constant time. Expired rows are deleted on sight and reported as
// ErrExpired; absent tokens as ErrNotFound. Either way the caller falls back
// to re-authentication.
func (s *Service) Validate(ctx context.Context, token string, now time.Time) (Row, error) {
	if token == "" || len(token) > 1024 {
		return Row{}, ErrNotFound
	}

	hash := HashTokenHex(token)
	row, err := s.store.GetByTokenHash(ctx, hash)
	if err != nil {
		return Row{}, err
	}

	if subtle.ConstantTimeCompare([]byte(hash), []byte(row.TokenHash)) != 1 {
		return Row{}, ErrNotFound
	}

	if !row.ExpiresAt.After(now) {
		_ = s.store.Delete(ctx, row.ID)
		return Row{}, ErrExpired
	}

	return row, nil
}

// Revoke deletes the session behind a presented token, if any.
func (s *Service) Revoke(ctx context.Context, token string) error {
	row, err := s.store.GetByTokenHash(ctx, HashTokenHex(token))
	if err != nil {
		if err == ErrNotFound {
			return nil
		}
		return err
	}
	return s.store.Delete(ctx, row.ID)
}

// Count reports the number of sessions still valid at now.
func (s *Service) Count(ctx context.Context, now time.Time) (int, error) {
	return s.store.Count(ctx, now)
}

// Sweep purges expired sessions once.
func (s *Service) Sweep(ctx context.Context, now time.Time) (int, error) {
	return s.store.DeleteExpired(ctx, now)
}

// RunSweeper purges expired sessions on the configured interval until ctx is
// cancelled. Run it in its own goroutine.
func (s *Service) RunSweeper(ctx context.Context) {
	t := time.NewTicker(s.cfg.SweepInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			_, _ = s.store.DeleteExpired(ctx, now.UTC())
		}
	}
}
