// Package app wires the authgate runtime: config, logging, session
// persistence, and the guarded HTTP and WebSocket routes.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"authgate/credential"
	"authgate/guard"
	"authgate/session"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App is the authgate runtime: it owns the HTTP server wiring, the guards,
// and the session store lifecycles.
type App struct {
	cfg Config
	log Logger

	reg *prometheus.Registry

	dbPool    *pgxpool.Pool
	dbEnabled bool
	stores    []session.Store

	httpGuard *guard.Guard
	wsGuard   *guard.Guard
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	creds, err := newCredentialSource(cfg)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := &App{cfg: cfg, log: log, reg: reg}

	if cfg.DatabaseURL != "" {
		pool, err := NewDBPool(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		a.dbPool = pool
		a.dbEnabled = true
		log.Info("sessions.store", "kind", "postgres")
	} else if cfg.SQLitePath != "" {
		log.Info("sessions.store", "kind", "sqlite", "path", cfg.SQLitePath)
	} else {
		log.Info("sessions.store", "kind", "memory")
	}

	gcfg := guard.Config{
		Window:           cfg.ChallengeWindow,
		SessionTTL:       cfg.SessionTTL,
		CookieSecure:     cfg.CookieSecure,
		LockoutThreshold: cfg.LockoutThreshold,
		LockoutWindow:    cfg.LockoutWindow,
		TrustProxy:       cfg.TrustProxy,
		WSOriginPatterns: cfg.WSAllowedOrigins,
		Version:          cfg.Version,
	}

	httpStore, err := a.newSessionStore(cfg.ProtectedPath)
	if err != nil {
		a.closeStores()
		return nil, err
	}
	a.httpGuard, err = guard.New(cfg.ProtectedPath, dashboardHandler(cfg.Version), creds, gcfg,
		guard.WithLogger(log),
		guard.WithStore(httpStore),
		guard.WithRegisterer(reg),
	)
	if err != nil {
		a.closeStores()
		return nil, err
	}

	wsStore, err := a.newSessionStore(cfg.StreamPath)
	if err != nil {
		a.closeStores()
		return nil, err
	}
	a.wsGuard, err = guard.NewWebSocket(cfg.StreamPath, echoStream(log), creds, gcfg,
		guard.WithLogger(log),
		guard.WithStore(wsStore),
		guard.WithRegisterer(reg),
	)
	if err != nil {
		a.closeStores()
		return nil, err
	}

	return a, nil
}

func newCredentialSource(cfg Config) (credential.Source, error) {
	if cfg.KeyringService != "" {
		return credential.NewKeyringSource(cfg.KeyringService), nil
	}
	if cfg.Password == "" {
		return nil, errors.New("app: no credentials configured, set AUTHGATE_PASSWORD or AUTHGATE_KEYRING_SERVICE")
	}
	return credential.NewStaticSource(cfg.Username, cfg.Password), nil
}

// newSessionStore picks the configured persistence backend for one route.
// Each route gets its own store so sessions never cross routes.
func (a *App) newSessionStore(route string) (session.Store, error) {
	var (
		st  session.Store
		err error
	)
	switch {
	case a.dbEnabled:
		st, err = session.NewPostgresStore(context.Background(), a.dbPool, route)
	case a.cfg.SQLitePath != "":
		st, err = session.NewSQLiteStore(a.cfg.SQLitePath, route)
	default:
		st = session.NewMemoryStore()
	}
	if err != nil {
		return nil, err
	}
	a.stores = append(a.stores, st)
	return st, nil
}

func (a *App) closeStores() {
	for _, st := range a.stores {
		if err := st.Close(); err != nil {
			a.log.Error("store.close.fail", "err", err)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
	}
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	defer a.closeStores()

	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.reg, a.httpGuard, a.wsGuard)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithRequestLogging(mux, a.log),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start",
		"addr", a.cfg.HTTPAddr,
		"protected_path", a.cfg.ProtectedPath,
		"stream_path", a.cfg.StreamPath,
		"db_enabled", a.dbEnabled,
	)

	sweepCtx, stopSweepers := context.WithCancel(ctx)
	defer stopSweepers()
	go a.httpGuard.RunSweeper(sweepCtx)
	go a.wsGuard.RunSweeper(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
