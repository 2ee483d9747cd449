package guard

import (
	"sync"
	"time"
)

// lockout tracks failed sign-in attempts per client IP. Once a client
// accumulates threshold failures inside the window, further attempts are
// refused until the window since its last failure passes. A successful
// sign-in clears the record.
type lockout struct {
	mu        sync.Mutex
	threshold int
	window    time.Duration
	entries   map[string]*lockoutEntry
}

type lockoutEntry struct {
	failures int
	last     time.Time
}

func newLockout(threshold int, window time.Duration) *lockout {
	return &lockout{
		threshold: threshold,
		window:    window,
		entries:   make(map[string]*lockoutEntry),
	}
}

// blocked reports whether ip is currently locked out and, if so, for how
// much longer.
func (l *lockout) blocked(ip string, now time.Time) (bool, time.Duration) {
	if l.threshold < 0 || ip == "" {
		return false, 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.entries[ip]
	if e == nil {
		return false, 0
	}

	age := now.Sub(e.last)
	if age >= l.window {
		delete(l.entries, ip)
		return false, 0
	}
	if e.failures >= l.threshold {
		return true, l.window - age
	}
	return false, 0
}

// record notes one failed attempt for ip.
func (l *lockout) record(ip string, now time.Time) {
	if l.threshold < 0 || ip == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.entries[ip]
	if e == nil || now.Sub(e.last) >= l.window {
		e = &lockoutEntry{}
		l.entries[ip] = e
	}
	e.failures++
	e.last = now
}

// reset clears the record for ip after a successful sign-in.
func (l *lockout) reset(ip string) {
	if ip == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, ip)
}
