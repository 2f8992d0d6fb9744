package liveview

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

type statusRec struct {
	status string
	text   string
}

func waitStatus(t *testing.T, ch <-chan statusRec, wantText string) statusRec {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case rec := <-ch:
			if rec.text == wantText {
				return rec
			}
		case <-deadline:
			t.Fatalf("timed out waiting for status %q", wantText)
		}
	}
}

// echoServer upgrades every request and holds the connection open
// until the peer goes away, counting dials and exposing the accepted
// connections.
func echoServer(t *testing.T, dials *atomic.Int32, conns chan<- *websocket.Conn) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		dials.Add(1)
		if conns != nil {
			conns <- ws
		}
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func TestConnStatusTransitionsAndReconnect(t *testing.T) {
	var dials atomic.Int32
	conns := make(chan *websocket.Conn, 4)
	srv := echoServer(t, &dials, conns)
	defer srv.Close()

	statuses := make(chan statusRec, 32)
	c := NewConn(ConnOptions{
		URL:               wsURL(srv),
		ReconnectDelay:    50 * time.Millisecond,
		KeepaliveInterval: time.Hour,
		OnStatus:          func(s, txt string) { statuses <- statusRec{s, txt} },
	})
	defer c.Shutdown()

	c.Connect()
	rec := waitStatus(t, statuses, "Connected")
	if rec.status != "connected" {
		t.Fatalf("connect status = %q, want connected", rec.status)
	}
	if c.State() != StateConnected {
		t.Fatalf("state = %v, want Connected", c.State())
	}

	// Drop the channel from the server side.
	ws := <-conns
	closedAt := time.Now()
	_ = ws.Close()

	rec = waitStatus(t, statuses, "Disconnected")
	if rec.status != "error" {
		t.Fatalf("disconnect status = %q, want error", rec.status)
	}

	// Exactly one reconnect, no sooner than the fixed delay.
	waitStatus(t, statuses, "Connected")
	if elapsed := time.Since(closedAt); elapsed < 40*time.Millisecond {
		t.Fatalf("reconnected after %v, want >= ~50ms", elapsed)
	}
	if got := dials.Load(); got != 2 {
		t.Fatalf("dials = %d, want 2", got)
	}
}

func TestConnConnectIsIdempotent(t *testing.T) {
	var dials atomic.Int32
	srv := echoServer(t, &dials, nil)
	defer srv.Close()

	statuses := make(chan statusRec, 8)
	c := NewConn(ConnOptions{
		URL:               wsURL(srv),
		ReconnectDelay:    time.Hour,
		KeepaliveInterval: time.Hour,
		OnStatus:          func(s, txt string) { statuses <- statusRec{s, txt} },
	})
	defer c.Shutdown()

	c.Connect()
	c.Connect()
	c.Connect()
	waitStatus(t, statuses, "Connected")
	c.Connect()

	time.Sleep(100 * time.Millisecond)
	if got := dials.Load(); got != 1 {
		t.Fatalf("dials = %d, want 1", got)
	}
}

func TestConnKeepaliveToken(t *testing.T) {
	msgs := make(chan string, 8)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			msgs <- string(data)
		}
	}))
	defer srv.Close()

	c := NewConn(ConnOptions{
		URL:               wsURL(srv),
		ReconnectDelay:    time.Hour,
		KeepaliveInterval: 50 * time.Millisecond,
	})
	defer c.Shutdown()
	c.Connect()

	select {
	case msg := <-msgs:
		if msg != "ping" {
			t.Fatalf("keepalive frame = %q, want ping", msg)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no keepalive frame received")
	}
}

func TestConnFramesReachRouter(t *testing.T) {
	conns := make(chan *websocket.Conn, 1)
	var dials atomic.Int32
	srv := echoServer(t, &dials, conns)
	defer srv.Close()

	frames := make(chan string, 8)
	c := NewConn(ConnOptions{
		URL:               wsURL(srv),
		ReconnectDelay:    time.Hour,
		KeepaliveInterval: time.Hour,
		OnFrame:           func(data []byte) { frames <- string(data) },
	})
	defer c.Shutdown()
	c.Connect()

	ws := <-conns
	if err := ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"stats","data":{}}`)); err != nil {
		t.Fatalf("server write: %v", err)
	}

	select {
	case frame := <-frames:
		if !strings.Contains(frame, `"stats"`) {
			t.Fatalf("frame = %q", frame)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("frame never delivered")
	}
}

func TestConnRetriesWhileServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := wsURL(srv)
	srv.Close()

	statuses := make(chan statusRec, 64)
	c := NewConn(ConnOptions{
		URL:               url,
		ReconnectDelay:    20 * time.Millisecond,
		KeepaliveInterval: time.Hour,
		OnStatus:          func(s, txt string) { statuses <- statusRec{s, txt} },
	})
	defer c.Shutdown()
	c.Connect()

	// The retry loop is perpetual: every failed cycle reports an error
	// and a close, then schedules the next attempt.
	waitStatus(t, statuses, "Connection Error")
	waitStatus(t, statuses, "Disconnected")
	waitStatus(t, statuses, "Disconnected")
	waitStatus(t, statuses, "Disconnected")
}

func TestConnShutdownStopsReconnectAndTimers(t *testing.T) {
	var dials atomic.Int32
	srv := echoServer(t, &dials, nil)
	defer srv.Close()

	statuses := make(chan statusRec, 8)
	c := NewConn(ConnOptions{
		URL:               wsURL(srv),
		ReconnectDelay:    30 * time.Millisecond,
		KeepaliveInterval: 30 * time.Millisecond,
		OnStatus:          func(s, txt string) { statuses <- statusRec{s, txt} },
	})
	c.Connect()
	waitStatus(t, statuses, "Connected")

	c.Shutdown()
	if c.State() != StateDisconnected {
		t.Fatalf("state after shutdown = %v, want Disconnected", c.State())
	}

	before := dials.Load()
	time.Sleep(150 * time.Millisecond)
	if got := dials.Load(); got != before {
		t.Fatalf("dials after shutdown grew: %d -> %d", before, got)
	}

	// Second shutdown is a no-op.
	c.Shutdown()
}
