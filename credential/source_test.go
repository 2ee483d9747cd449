package credential

import (
	"context"
	"testing"
)

func TestStaticSource_Lookup(t *testing.T) {
	t.Parallel()

	src := NewStaticSource("admin", "s3cret")

	got, err := src.Lookup(context.Background(), "admin")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.Username != "admin" || got.Password != "s3cret" {
		t.Fatalf("unexpected credential: %+v", got)
	}

	if _, err := src.Lookup(context.Background(), "root"); err != ErrUnknownUser {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
	if _, err := src.Lookup(context.Background(), ""); err != ErrUnknownUser {
		t.Fatalf("expected ErrUnknownUser for empty username, got %v", err)
	}
}
