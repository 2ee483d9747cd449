package session

import (
	"context"
	"testing"
	"time"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	svc, err := NewService(DefaultConfig(), NewMemoryStore())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestService_IssueAndValidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t)
	now := time.Now().UTC()

	issued, err := svc.Issue(ctx, now, "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if issued.Token == "" || issued.ID == "" {
		t.Fatalf("incomplete issue result: %+v", issued)
	}
	if got, want := issued.ExpiresAt, now.Add(5*time.Minute); !got.Equal(want) {
		t.Fatalf("ExpiresAt=%v want %v", got, want)
	}

	row, err := svc.Validate(ctx, issued.Token, now.Add(time.Second))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if row.Username != "admin" {
		t.Fatalf("username=%q want admin", row.Username)
	}
}

func TestService_ValidateUnknownToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	now := time.Now().UTC()

	if _, err := svc.Validate(context.Background(), "no-such-token", now); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Validate(context.Background(), "", now); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for empty token, got %v", err)
	}
}

func TestService_ValidateExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t)
	now := time.Now().UTC()

	issued, err := svc.Issue(ctx, now, "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// One second past expiry.
	if _, err := svc.Validate(ctx, issued.Token, issued.ExpiresAt.Add(time.Second)); err != ErrExpired {
		t.Fatalf("expected ErrExpired, got %v", err)
	}

	// The expired row is gone; a second attempt is plain absence.
	if _, err := svc.Validate(ctx, issued.Token, now); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after purge, got %v", err)
	}
}

func TestService_Revoke(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t)
	now := time.Now().UTC()

	issued, err := svc.Issue(ctx, now, "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if err := svc.Revoke(ctx, issued.Token); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := svc.Validate(ctx, issued.Token, now); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after revoke, got %v", err)
	}

	// Revoking an unknown token is a no-op.
	if err := svc.Revoke(ctx, "never-issued"); err != nil {
		t.Fatalf("Revoke unknown: %v", err)
	}
}

func TestService_Sweep(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t)
	now := time.Now().UTC()

	a, _ := svc.Issue(ctx, now, "admin")
	b, _ := svc.Issue(ctx, now, "admin")
	_ = a
	_ = b

	n, err := svc.Sweep(ctx, now.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 2 {
		t.Fatalf("swept %d rows, want 2", n)
	}
}

func TestNewService_RejectsBadConfig(t *testing.T) {
	t.Parallel()

	cases := []Config{
		{TTL: 0, TokenBytes: 48, SweepInterval: time.Minute},
		{TTL: time.Minute, TokenBytes: 8, SweepInterval: time.Minute},
		{TTL: time.Minute, TokenBytes: 128, SweepInterval: time.Minute},
		{TTL: time.Minute, TokenBytes: 48, SweepInterval: 0},
	}

	for _, cfg := range cases {
		if _, err := NewService(cfg, NewMemoryStore()); err != ErrConfig {
			t.Fatalf("config %+v: expected ErrConfig, got %v", cfg, err)
		}
	}
}
