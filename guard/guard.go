package guard

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"authgate/challenge"
	"authgate/credential"
	"authgate/session"

	"github.com/prometheus/client_golang/prometheus"
)

// Credentials used for the timing-equalizing verify when the presented
// username is unknown.
const (
	dummyUser = "dummy-user-for-timing-only"
	dummyPass = "dummy-password-for-timing-only"
)

// Guard protects one route. Construct with New or NewWebSocket, then mount
// with Register.
type Guard struct {
	log  *slog.Logger
	cfg  Config
	path string

	next http.Handler // HTTP mode
	wsFn WSHandler    // WebSocket mode

	creds    credential.Source
	sessions *session.Service
	verifier challenge.Verifier
	lockout  *lockout
	metrics  *metrics

	now func() time.Time
}

// Option configures optional guard dependencies.
type Option func(*options)

type options struct {
	log   *slog.Logger
	store session.Store
	reg   prometheus.Registerer
	now   func() time.Time
}

// WithLogger sets the guard's logger. Default slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithStore sets the session store. Default a fresh in-memory store, which
// keeps this guard's sessions isolated from every other guard.
func WithStore(store session.Store) Option {
	return func(o *options) { o.store = store }
}

// WithRegisterer exposes the guard's metrics on reg instead of a private
// registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.reg = reg }
}

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds a guard around an HTTP handler.
func New(path string, next http.Handler, creds credential.Source, cfg Config, opts ...Option) (*Guard, error) {
	if next == nil {
		return nil, errors.New("guard: nil handler")
	}
	g, err := newGuard(path, creds, cfg, opts...)
	if err != nil {
		return nil, err
	}
	g.next = next
	return g, nil
}

func newGuard(path string, creds credential.Source, cfg Config, opts ...Option) (*Guard, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, errors.New("guard: path must start with '/'")
	}
	if creds == nil {
		return nil, errors.New("guard: nil credential source")
	}

	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	if o.store == nil {
		o.store = session.NewMemoryStore()
	}
	if o.now == nil {
		o.now = time.Now
	}

	cfg = cfg.withDefaults()

	sessions, err := session.NewService(session.Config{
		TTL:           cfg.SessionTTL,
		TokenBytes:    cfg.SessionTokenBytes,
		SweepInterval: time.Minute,
	}, o.store)
	if err != nil {
		return nil, err
	}

	g := &Guard{
		log:      o.log,
		cfg:      cfg,
		path:     path,
		creds:    creds,
		sessions: sessions,
		verifier: challenge.Verifier{Window: cfg.Window, Now: o.now},
		lockout:  newLockout(cfg.LockoutThreshold, cfg.LockoutWindow),
		now:      o.now,
	}
	g.metrics = newMetrics(o.reg, path, g.activeSessions)
	return g, nil
}

// activeSessions backs the sessions_active gauge. Scrapes happen outside any
// request, so the lookup gets its own bounded context.
func (g *Guard) activeSessions() float64 {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	n, err := g.sessions.Count(ctx, g.now().UTC())
	if err != nil {
		g.log.Error("guard.sessions.count.fail", "err", err)
		return 0
	}
	return float64(n)
}

// Path returns the protected route path.
func (g *Guard) Path() string { return g.path }

// RunSweeper purges this guard's expired sessions periodically until ctx is
// cancelled. Run it in its own goroutine alongside the server.
func (g *Guard) RunSweeper(ctx context.Context) { g.sessions.RunSweeper(ctx) }

func (g *Guard) basePath() string {
	if g.path == "/" {
		return ""
	}
	return strings.TrimSuffix(g.path, "/")
}

// LoginPath is the GET sub-route serving the login page.
func (g *Guard) LoginPath() string { return g.basePath() + "/login" }

// SigninPath is the POST sub-route verifying the bearer challenge.
func (g *Guard) SigninPath() string { return g.basePath() + "/signin" }

// LogoutPath is the GET sub-route revoking the current session.
func (g *Guard) LogoutPath() string { return g.basePath() + "/logout" }

// Register mounts the protected route and its sub-routes onto mux.
func (g *Guard) Register(mux *http.ServeMux) {
	if g == nil || mux == nil {
		return
	}
	mux.Handle(g.path, http.HandlerFunc(g.serveProtected))
	mux.HandleFunc(g.LoginPath(), g.handleLoginPage)
	mux.HandleFunc(g.SigninPath(), g.handleSignin)
	mux.HandleFunc(g.LogoutPath(), g.handleLogout)
}

// ServeHTTP serves the protected route directly, for callers mounting the
// guard without Register. Sub-routes still need Register to work.
func (g *Guard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.serveProtected(w, r)
}

func (g *Guard) serveProtected(w http.ResponseWriter, r *http.Request) {
	row, err := g.sessionFromRequest(r)
	if err != nil {
		g.metrics.sessionChecks.WithLabelValues(sessionOutcome(err)).Inc()
		g.log.Info("guard.session.miss", "path", r.URL.Path, "reason", err.Error())

		expired := errors.Is(err, session.ErrExpired)

		if g.wsFn != nil {
			// Streaming route: no login page to bounce to; refuse before the
			// connection is established.
			detail := "authentication required"
			if expired {
				detail = "session expired"
			}
			writeDetail(w, http.StatusUnauthorized, detail)
			return
		}

		g.clearSessionCookie(w)
		loginURL := g.LoginPath()
		if expired {
			// The login page explains why the client was bounced.
			loginURL += "?reason=expired"
		}
		http.Redirect(w, r, loginURL, http.StatusFound)
		return
	}

	g.metrics.sessionChecks.WithLabelValues(outcomeSuccess).Inc()

	if g.wsFn != nil {
		g.serveWS(w, r, row)
		return
	}
	g.next.ServeHTTP(w, r)
}

func (g *Guard) handleSignin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	now := g.now().UTC()
	ip := clientIP(r, g.cfg.TrustProxy)

	if blocked, retryAfter := g.lockout.blocked(ip, now); blocked {
		g.metrics.signinAttempts.WithLabelValues(outcomeLockedOut).Inc()
		g.log.Warn("guard.signin.locked_out", "ip", ip, "retry_after", retryAfter)
		w.Header().Set("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()+1), 10))
		writeDetail(w, http.StatusTooManyRequests, "too many failed attempts")
		return
	}

	token := bearerToken(r)
	if token == "" {
		g.lockout.record(ip, now)
		g.metrics.signinAttempts.WithLabelValues(outcomeInvalid).Inc()
		writeDetail(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	ch, err := challenge.Decode(token)
	if err != nil {
		g.lockout.record(ip, now)
		g.metrics.signinAttempts.WithLabelValues(outcomeMalformed).Inc()
		g.log.Warn("guard.signin.malformed", "ip", ip)
		writeDetail(w, http.StatusBadRequest, "malformed challenge")
		return
	}

	username, err := challenge.DecodeHexUTF16(ch.HexUser)
	if err != nil {
		g.lockout.record(ip, now)
		g.metrics.signinAttempts.WithLabelValues(outcomeMalformed).Inc()
		g.log.Warn("guard.signin.malformed", "ip", ip)
		writeDetail(w, http.StatusBadRequest, "malformed challenge")
		return
	}

	cred, err := g.creds.Lookup(r.Context(), username)
	if err != nil {
		// Timing parity with the digest comparison below.
		_ = g.verifier.Verify(ch, dummyUser, dummyPass)
		g.failSignin(w, ip, now, username, challenge.ErrInvalidCredentials)
		return
	}

	if err := g.verifier.Verify(ch, cred.Username, cred.Password); err != nil {
		g.failSignin(w, ip, now, username, err)
		return
	}

	issued, err := g.sessions.Issue(r.Context(), now, username)
	if err != nil {
		g.metrics.signinAttempts.WithLabelValues(outcomeServerError).Inc()
		g.log.Error("guard.signin.issue.fail", "err", err)
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}

	g.lockout.reset(ip)
	g.metrics.signinAttempts.WithLabelValues(outcomeSuccess).Inc()
	g.metrics.sessionsIssued.Inc()
	g.log.Info("guard.signin.ok", "user", username, "ip", ip, "session", issued.ID, "expires_at", issued.ExpiresAt)

	g.setSessionCookie(w, issued.Token)
	writeJSON(w, http.StatusOK, redirectResponse{RedirectURL: g.path})
}

func (g *Guard) failSignin(w http.ResponseWriter, ip string, now time.Time, username string, err error) {
	if errors.Is(err, challenge.ErrExpired) {
		// A correct digest with a stale timestamp is the right user with a
		// slow clock or network; it does not count toward lockout.
		g.metrics.signinAttempts.WithLabelValues(outcomeExpired).Inc()
		g.log.Warn("guard.signin.expired", "user", username, "ip", ip)
		writeDetail(w, http.StatusUnauthorized, "expired challenge")
		return
	}

	g.lockout.record(ip, now)
	g.metrics.signinAttempts.WithLabelValues(outcomeInvalid).Inc()
	g.log.Warn("guard.signin.invalid", "user", username, "ip", ip)
	writeDetail(w, http.StatusUnauthorized, "incorrect username or password")
}

func (g *Guard) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if _, err := g.sessionFromRequest(r); err == nil {
		http.Redirect(w, r, g.path, http.StatusFound)
		return
	}

	detail := ""
	if r.URL.Query().Get("reason") == "expired" {
		detail = "Session expired or invalid."
	}

	g.clearSessionCookie(w)
	w.Header().Set("Authorization", "")
	renderPage(w, http.StatusOK, "login.html", loginPageData{
		Signin:  g.SigninPath(),
		Detail:  detail,
		Version: g.cfg.Version,
	})
}

func (g *Guard) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	detail := "No active session."
	if c, err := r.Cookie(g.cfg.CookieName); err == nil && c.Value != "" {
		if err := g.sessions.Revoke(r.Context(), c.Value); err != nil {
			g.log.Error("guard.logout.revoke.fail", "err", err)
		} else {
			detail = "You have been signed out."
		}
	}

	g.clearSessionCookie(w)
	w.Header().Set("Authorization", "")
	renderPage(w, http.StatusOK, "logout.html", logoutPageData{
		Detail:    detail,
		LoginPath: g.LoginPath(),
		Version:   g.cfg.Version,
	})
}

// ---- session helpers ----

func (g *Guard) sessionFromRequest(r *http.Request) (session.Row, error) {
	c, err := r.Cookie(g.cfg.CookieName)
	if err != nil || c.Value == "" {
		return session.Row{}, session.ErrNotFound
	}
	return g.sessions.Validate(r.Context(), c.Value, g.now().UTC())
}

func (g *Guard) cookiePath() string {
	if g.path == "/" {
		return "/"
	}
	return g.basePath()
}

func (g *Guard) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     g.cfg.CookieName,
		Value:    token,
		Path:     g.cookiePath(),
		MaxAge:   int(g.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   g.cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (g *Guard) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     g.cfg.CookieName,
		Value:    "",
		Path:     g.cookiePath(),
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func sessionOutcome(err error) string {
	if errors.Is(err, session.ErrExpired) {
		return outcomeExpired
	}
	return outcomeNoSession
}

// ---- request helpers ----

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := parseForwardedIP(r.Header.Get("X-Forwarded-For")); ip != "" {
			return ip
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip.String()
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip.String()
		}
	}
	return ""
}

func parseForwardedIP(raw string) string {
	if raw == "" {
		return ""
	}
	for _, p := range strings.Split(raw, ",") {
		if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
			return ip.String()
		}
	}
	return ""
}
