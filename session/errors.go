package session

import "errors"

var (
	// ErrNotFound is returned when no session matches the presented token.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when the session exists but its expiry has
	// passed. Callers treat it the same as absence: re-authenticate.
	ErrExpired = errors.New("session expired")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid session config")
)
