package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"authgate/guard"
	"authgate/session"

	"github.com/coder/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func registerHTTP(
	mux *http.ServeMux,
	log Logger,
	cfg Config,
	dbPool *pgxpool.Pool,
	dbEnabled bool,
	reg *prometheus.Registry,
	guards ...*guard.Guard,
) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.ReadinessRequireDB && !dbEnabled {
			http.Error(w, "db not configured", http.StatusServiceUnavailable)
			return
		}

		if dbEnabled && dbPool != nil {
			if err := PingDB(r.Context(), dbPool, 2*time.Second); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				log.Info("readyz.db.not_ready", "err", err)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	for _, g := range guards {
		g.Register(mux)
	}
}

// dashboardHandler is the content behind the guarded HTTP route. Anything
// reaching it already carries a valid session.
func dashboardHandler(version string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<!doctype html>
<html>
<body>
<h1>Dashboard</h1>
<p>You are signed in.</p>
<p><a href="logout">Sign out</a></p>
<footer>authgate %s</footer>
</body>
</html>
`, version)
	})
}

// echoStream is the handler behind the guarded WebSocket route: it echoes
// text frames back prefixed with the session's username until the client
// disconnects or the session expires.
func echoStream(log Logger) guard.WSHandler {
	return func(ctx context.Context, conn *websocket.Conn, sess session.Row) {
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		for {
			typ, data, err := conn.Read(ctx)
			if err != nil {
				if ctx.Err() != nil {
					_ = conn.Close(websocket.StatusGoingAway, "session expired")
				}
				return
			}
			msg := append([]byte(sess.Username+": "), data...)
			if err := conn.Write(ctx, typ, msg); err != nil {
				log.Info("stream.write.fail", "err", err)
				return
			}
		}
	}
}
