package session

import "time"

// Config controls session lifetime and token entropy.
type Config struct {
	// TTL is how long an issued session stays valid.
	TTL time.Duration

	// TokenBytes is the number of random bytes behind each opaque token.
	TokenBytes int

	// SweepInterval is how often RunSweeper purges expired rows.
	SweepInterval time.Duration
}

// DefaultConfig returns the documented defaults: five-minute sessions backed
// by 48-byte tokens, swept every minute.
func DefaultConfig() Config {
	return Config{
		TTL:           5 * time.Minute,
		TokenBytes:    48,
		SweepInterval: time.Minute,
	}
}

// Validate checks the configuration, clamping nothing: explicit bad values
// are errors rather than silent fallbacks.
func (c Config) Validate() error {
	if c.TTL <= 0 {
		return ErrConfig
	}
	if c.TokenBytes < 32 || c.TokenBytes > 64 {
		return ErrConfig
	}
	if c.SweepInterval <= 0 {
		return ErrConfig
	}
	return nil
}
