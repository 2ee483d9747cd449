package guard

import (
	"context"
	"errors"
	"net/http"

	"authgate/credential"
	"authgate/session"

	"github.com/coder/websocket"
)

const wsReadLimitBytes = 1 << 20

// WSHandler runs an accepted WebSocket connection. The connection is only
// established for requests carrying a valid session; sess describes it.
// The handler owns conn and must close it before returning.
type WSHandler func(ctx context.Context, conn *websocket.Conn, sess session.Row)

// NewWebSocket builds a guard around a WebSocket handler. Requests without a
// valid session are refused with 401 before the upgrade, so no connection is
// ever established for them.
func NewWebSocket(path string, fn WSHandler, creds credential.Source, cfg Config, opts ...Option) (*Guard, error) {
	if fn == nil {
		return nil, errors.New("guard: nil websocket handler")
	}
	g, err := newGuard(path, creds, cfg, opts...)
	if err != nil {
		return nil, err
	}
	g.wsFn = fn
	return g, nil
}

func (g *Guard) serveWS(w http.ResponseWriter, r *http.Request, sess session.Row) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:     g.cfg.WSOriginPatterns,
		InsecureSkipVerify: g.cfg.WSInsecureSkipVerify,
	})
	if err != nil {
		g.log.Error("guard.ws.accept.fail", "path", r.URL.Path, "err", err)
		return
	}
	conn.SetReadLimit(wsReadLimitBytes)

	g.log.Info("guard.ws.open", "path", r.URL.Path, "user", sess.Username, "session", sess.ID)

	// Cap the connection to the session's remaining lifetime.
	ctx, cancel := context.WithDeadline(r.Context(), sess.ExpiresAt)
	defer cancel()

	start := g.now()
	g.wsFn(ctx, conn, sess)

	g.log.Info("guard.ws.close", "path", r.URL.Path, "user", sess.Username, "duration", g.now().Sub(start))
}
