package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// NewToken returns a cryptographically random, URL-safe opaque token.
// The plain token is stored only on the client; the server keeps the hash.
func NewToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 48
	}

	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashTokenHex is the server-side storage form of a token: SHA-256, lowercase
// hex, stable 64 characters. Hashing before lookup also removes the token
// value from lookup timing.
func HashTokenHex(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
