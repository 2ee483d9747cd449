package guard

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"authgate/credential"
	"authgate/session"

	"github.com/coder/websocket"
)

func newWSTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	echo := func(ctx context.Context, conn *websocket.Conn, sess session.Row) {
		defer conn.Close(websocket.StatusNormalClosure, "bye")
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		_ = conn.Write(ctx, typ, append([]byte(sess.Username+": "), data...))
	}

	g, err := NewWebSocket("/stream", echo, credential.NewStaticSource("alice", "s3cret"),
		Config{WSInsecureSkipVerify: true},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("NewWebSocket: %v", err)
	}

	mux := http.NewServeMux()
	g.Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func wsSignin(t *testing.T, srv *httptest.Server) *http.Cookie {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/stream/signin", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+signedBearer("alice", "s3cret", time.Now()))

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("signin: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signin: status = %d", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "session_token" {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func TestWSRejectsWithoutSession(t *testing.T) {
	srv := newWSTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, resp, err := websocket.Dial(ctx, wsURL, nil) //nolint:bodyclose
	if err == nil {
		conn.Close(websocket.StatusNormalClosure, "")
		t.Fatal("dial without session succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("handshake response = %+v", resp)
	}

	var body detailResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr == nil && body.Detail == "" {
		t.Fatal("expected a detail message in the refusal body")
	}
}

func TestWSAcceptsWithSession(t *testing.T) {
	srv := newWSTestServer(t)
	cookie := wsSignin(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	header := http.Header{}
	header.Set("Cookie", cookie.String())

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		t.Fatalf("dial with session: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	if err := conn.Write(ctx, websocket.MessageText, []byte("ping")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := string(data); got != "alice: ping" {
		t.Fatalf("echo = %q", got)
	}
}
