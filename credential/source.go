package credential

import (
	"context"
	"errors"
)

// ErrUnknownUser is returned when a source has no credential for the
// requested username.
var ErrUnknownUser = errors.New("unknown user")

// Credential is a username/password pair, configured once at setup and
// immutable for the process lifetime.
type Credential struct {
	Username string
	Password string
}

// Source resolves the expected credential for a username.
type Source interface {
	Lookup(ctx context.Context, username string) (Credential, error)
}
