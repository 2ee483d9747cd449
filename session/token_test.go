package session

import "testing"

func TestNewToken_UniqueAndURLSafe(t *testing.T) {
	t.Parallel()

	a, err := NewToken(48)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	b, err := NewToken(48)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	if a == b {
		t.Fatalf("two tokens should not collide")
	}

	for _, c := range a {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			t.Fatalf("token contains non-URL-safe character %q", c)
		}
	}
}

func TestNewToken_DefaultSize(t *testing.T) {
	t.Parallel()

	tok, err := NewToken(0)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	// 48 bytes -> 64 base64url chars without padding.
	if len(tok) != 64 {
		t.Fatalf("token length=%d want 64", len(tok))
	}
}

func TestHashTokenHex_Stable(t *testing.T) {
	t.Parallel()

	h := HashTokenHex("some-token")
	if len(h) != 64 {
		t.Fatalf("hash length=%d want 64", len(h))
	}
	if h != HashTokenHex("some-token") {
		t.Fatalf("hash should be deterministic")
	}
	if h == HashTokenHex("some-token2") {
		t.Fatalf("distinct tokens should not share a hash")
	}
}
