package challenge

import "errors"

var (
	// ErrMalformed is returned when a bearer token cannot be decoded into a
	// challenge (bad base64, missing fields, or a non-numeric timestamp).
	ErrMalformed = errors.New("malformed challenge")

	// ErrInvalidCredentials is returned when the recomputed digest does not
	// match the one presented by the client.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExpired is returned when the challenge timestamp falls outside the
	// verifier's freshness window.
	ErrExpired = errors.New("expired challenge")
)
