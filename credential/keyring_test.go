package credential

import (
	"context"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestKeyringSource_StoreLookupDelete(t *testing.T) {
	keyring.MockInit()

	src := NewKeyringSource("authgate-test")
	if err := src.Store(Credential{Username: "admin", Password: "s3cret"}); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, err := src.Lookup(context.Background(), "admin")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.Password != "s3cret" {
		t.Fatalf("unexpected password: %q", got.Password)
	}

	if err := src.Delete("admin"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := src.Lookup(context.Background(), "admin"); err != ErrUnknownUser {
		t.Fatalf("expected ErrUnknownUser after delete, got %v", err)
	}
}

func TestKeyringSource_MissingUser(t *testing.T) {
	keyring.MockInit()

	src := NewKeyringSource("authgate-test")
	if _, err := src.Lookup(context.Background(), "nobody"); err != ErrUnknownUser {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
	if err := src.Delete("nobody"); err != nil {
		t.Fatalf("Delete of missing entry should be nil, got %v", err)
	}
}
