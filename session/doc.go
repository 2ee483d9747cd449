// Package session issues and validates the short-lived sessions granted after
// a successful challenge verification.
//
// Tokens are opaque random strings handed to the client as a cookie; the
// server stores only a SHA-256 hash. Each guarded route owns its own Store,
// so sessions never leak across routes. Store implementations cover an
// in-memory map (default), SQLite for single-binary deployments, and
// Postgres for shared ones.
package session
