package guard

import (
	"time"

	"authgate/challenge"
)

// Config controls one guard's challenge, session, and lockout behavior.
// Zero values mean the documented defaults.
type Config struct {
	// Window is the challenge timestamp freshness tolerance.
	// Default challenge.DefaultWindow (30s).
	Window time.Duration

	// SessionTTL is the lifetime of issued sessions and their cookies.
	// Default 5m.
	SessionTTL time.Duration

	// SessionTokenBytes is the entropy behind session tokens. Default 48.
	SessionTokenBytes int

	// CookieName names the session cookie. Default "session_token".
	CookieName string

	// CookieSecure marks the session cookie Secure. Off by default so local
	// HTTP development works; set it behind TLS.
	CookieSecure bool

	// LockoutThreshold is the number of failed sign-ins per client IP before
	// further attempts are refused. Default 3. Negative disables lockout.
	LockoutThreshold int

	// LockoutWindow is how long a locked-out client stays refused and how
	// far back failures are counted. Default 5m.
	LockoutWindow time.Duration

	// TrustProxy honors X-Forwarded-For / X-Real-IP when resolving the
	// client IP for lockout accounting.
	TrustProxy bool

	// WSOriginPatterns authorizes cross-origin WebSocket upgrades.
	// websocket.Accept allows same-host origins on its own; anything else
	// must match one of these host patterns.
	WSOriginPatterns []string

	// WSInsecureSkipVerify disables the upgrade origin check entirely.
	// Dev-only knob.
	WSInsecureSkipVerify bool

	// Version is rendered on the login and logout pages.
	Version string
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = challenge.DefaultWindow
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 5 * time.Minute
	}
	if c.SessionTokenBytes <= 0 {
		c.SessionTokenBytes = 48
	}
	if c.CookieName == "" {
		c.CookieName = "session_token"
	}
	if c.LockoutThreshold == 0 {
		c.LockoutThreshold = 3
	}
	if c.LockoutWindow <= 0 {
		c.LockoutWindow = 5 * time.Minute
	}
	return c
}
