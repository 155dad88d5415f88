// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/loopin-app/loopctl/internal/models"
)

// wsServer upgrades incoming connections and hands them to the test.
type wsServer struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader
	conns    chan *websocket.Conn
}

func newWSServer(t *testing.T) *wsServer {
	t.Helper()
	s := &wsServer{conns: make(chan *websocket.Conn, 1)}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		s.conns <- conn
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *wsServer) url() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

// conn returns the next accepted server-side connection.
func (s *wsServer) conn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case c := <-s.conns:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for connection")
		return nil
	}
}

func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

func newTestChannel(url string) *Channel {
	return New(Config{
		URL:              url,
		HandshakeTimeout: time.Second,
		ReadTimeout:      2 * time.Second,
		PingInterval:     time.Hour, // keep pings out of frame-level tests
	})
}

func TestChannelConnect(t *testing.T) {
	server := newWSServer(t)
	ch := newTestChannel(server.url())
	defer ch.Close()

	if ch.State() != StateDisconnected {
		t.Fatal("expected new channel disconnected")
	}
	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if ch.State() != StateConnected {
		t.Errorf("expected connected state, got %v", ch.State())
	}
}

func TestChannelDuplicateConnectIsNoop(t *testing.T) {
	server := newWSServer(t)
	ch := newTestChannel(server.url())
	defer ch.Close()

	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	server.conn(t)

	// A second connect while connected must not dial again.
	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("duplicate connect errored: %v", err)
	}
	select {
	case <-server.conns:
		t.Error("duplicate connect opened a second socket")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestChannelConnectFailureStaysDisconnected(t *testing.T) {
	ch := newTestChannel("ws://127.0.0.1:1/notifications/ws/1")

	if err := ch.Connect(context.Background()); err == nil {
		t.Fatal("expected dial failure")
	}
	if ch.State() != StateDisconnected {
		t.Errorf("expected disconnected after failed dial, got %v", ch.State())
	}
}

func TestChannelDeliversDecodedEvents(t *testing.T) {
	server := newWSServer(t)
	ch := newTestChannel(server.url())
	defer ch.Close()

	events, cancel := ch.Subscribe()
	defer cancel()

	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	conn := server.conn(t)

	frame := `{"type": "new_post", "data": {"id": 7, "title": "hello"}}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("server write failed: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Kind != models.KindNewPost || ev.Post == nil || ev.Post.ID != 7 {
			t.Errorf("unexpected event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	latest, ok := ch.Latest()
	if !ok || latest.Kind != models.KindNewPost {
		t.Error("expected latest to hold the delivered event")
	}
}

// A malformed frame is dropped without killing the connection.
func TestChannelDropsMalformedFrames(t *testing.T) {
	server := newWSServer(t)
	ch := newTestChannel(server.url())
	defer ch.Close()

	events, cancel := ch.Subscribe()
	defer cancel()

	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	conn := server.conn(t)

	conn.WriteMessage(websocket.TextMessage, []byte(`{{{not json`))
	conn.WriteMessage(websocket.TextMessage, []byte(`{"type": "new_post", "data": {"id": 8}}`))

	select {
	case ev := <-events:
		if ev.Kind != models.KindNewPost || ev.Post.ID != 8 {
			t.Errorf("expected the frame after the malformed one, got %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event after malformed frame")
	}
	if ch.State() != StateConnected {
		t.Error("malformed frame must not drop the connection")
	}
}

// The subscriber slot holds only the newest undelivered event.
func TestChannelConflatesToLatest(t *testing.T) {
	server := newWSServer(t)
	ch := newTestChannel(server.url())
	defer ch.Close()

	events, cancel := ch.Subscribe()
	defer cancel()

	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	conn := server.conn(t)

	for _, id := range []string{"1", "2", "3"} {
		frame := `{"type": "new_post", "data": {"id": ` + id + `}}`
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			t.Fatalf("server write failed: %v", err)
		}
	}

	waitFor(t, "latest event", func() bool {
		ev, ok := ch.Latest()
		return ok && ev.Post != nil && ev.Post.ID == 3
	})

	// The slot never queues: by the time the newest event has landed, at
	// most one intermediate delivery can have slipped out ahead of it.
	var received []int64
	for {
		select {
		case ev := <-events:
			received = append(received, ev.Post.ID)
			if ev.Post.ID == 3 {
				if len(received) > 2 {
					t.Errorf("expected conflation, received %v", received)
				}
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for newest event, received %v", received)
		}
	}
}

func TestChannelServerCloseDisconnectsWithoutReconnect(t *testing.T) {
	server := newWSServer(t)
	ch := newTestChannel(server.url())
	defer ch.Close()

	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	conn := server.conn(t)
	conn.Close()

	waitFor(t, "disconnect", func() bool {
		return ch.State() == StateDisconnected
	})

	// The channel must stay down: no self-initiated redial.
	select {
	case <-server.conns:
		t.Error("channel reconnected on its own")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestChannelClose(t *testing.T) {
	server := newWSServer(t)
	ch := newTestChannel(server.url())

	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	server.conn(t)

	ch.Close()
	if ch.State() != StateDisconnected {
		t.Errorf("expected disconnected after close, got %v", ch.State())
	}

	// Close is idempotent, including on a never-connected channel.
	ch.Close()
	New(Config{}).Close()
}

func TestChannelSubscribeCancel(t *testing.T) {
	ch := New(Config{})
	events, cancel := ch.Subscribe()

	cancel()
	cancel() // repeat cancel is a no-op

	if _, open := <-events; open {
		t.Error("expected subscriber channel closed after cancel")
	}
}

func TestDeriveURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		userID  int64
		want    string
		wantErr bool
	}{
		{"http to ws", "http://127.0.0.1:8000", 7, "ws://127.0.0.1:8000/notifications/ws/7", false},
		{"https to wss", "https://api.loop.example", 12, "wss://api.loop.example/notifications/ws/12", false},
		{"path replaced", "http://127.0.0.1:8000/api?v=1", 7, "ws://127.0.0.1:8000/notifications/ws/7", false},
		{"invalid URL", "://bad", 1, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveURL(tt.base, tt.userID)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
