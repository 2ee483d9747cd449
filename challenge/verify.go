package challenge

import (
	"crypto/subtle"
	"time"
)

// DefaultWindow is the default freshness tolerance for challenge timestamps.
const DefaultWindow = 30 * time.Second

// Verifier recomputes challenge digests server-side and enforces the
// timestamp freshness window. Verification is a pure function of its inputs;
// a Verifier is safe for concurrent use.
type Verifier struct {
	// Window is the maximum allowed |now - timestamp|. Zero means
	// DefaultWindow.
	Window time.Duration

	// Now overrides the clock, for tests. Nil means time.Now.
	Now func() time.Time
}

// Verify checks ch against the configured credential pair.
//
// The digest is recomputed from the server's own hex encoding of the
// credential and the client-supplied timestamp. A username or digest mismatch
// yields ErrInvalidCredentials; a correct digest with a timestamp outside the
// window yields ErrExpired. Both checks must pass.
func (v Verifier) Verify(ch Challenge, username, password string) error {
	hexUser := HexUTF16(username)
	hexPass := HexUTF16(password)

	userOK := constantTimeEqual(ch.HexUser, hexUser)

	expected := Digest(hexUser, hexPass, ch.Timestamp)
	digestOK := constantTimeEqual(ch.Digest, expected)

	if !userOK || !digestOK {
		return ErrInvalidCredentials
	}

	if !v.fresh(ch.Timestamp) {
		return ErrExpired
	}
	return nil
}

func (v Verifier) fresh(ts int64) bool {
	now := time.Now()
	if v.Now != nil {
		now = v.Now()
	}

	window := v.Window
	if window <= 0 {
		window = DefaultWindow
	}

	delta := now.Unix() - ts
	if delta < 0 {
		delta = -delta
	}
	return time.Duration(delta)*time.Second <= window
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
