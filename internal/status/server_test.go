// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/loopin-app/loopctl/internal/live"
	"github.com/loopin-app/loopctl/internal/models"
	"github.com/loopin-app/loopctl/internal/reconcile"
	"github.com/loopin-app/loopctl/internal/session"
)

func newTestServer(t *testing.T) (*Server, *reconcile.FeedStore, *reconcile.NotificationStore, *session.Store) {
	t.Helper()

	admin, err := session.NewAdminStore(filepath.Join(t.TempDir(), "admin_token"))
	if err != nil {
		t.Fatal(err)
	}
	store := session.NewStore(admin)
	feed := reconcile.NewFeedStore()
	notes := reconcile.NewNotificationStore()

	srv := NewServer(Config{
		ListenAddr:    "127.0.0.1:0",
		Session:       store,
		Feed:          feed,
		Notifications: notes,
		LiveState:     func() live.State { return live.StateDisconnected },
	})
	return srv, feed, notes, store
}

func get(t *testing.T, srv *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode %s response: %v", path, err)
		}
	}
	return rec, body
}

func TestStatusHealth(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec, body := get(t, srv, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestStatusSession(t *testing.T) {
	srv, _, _, store := newTestServer(t)

	_, body := get(t, srv, "/v1/session")
	if body["loading"] != true {
		t.Error("expected loading true before resolution")
	}
	if body["signed_in"] != false {
		t.Error("expected signed_in false before resolution")
	}
	if body["live"] != "disconnected" {
		t.Errorf("expected live disconnected, got %v", body["live"])
	}

	store.ResolveSignedOut()
	_, body = get(t, srv, "/v1/session")
	if body["loading"] != false {
		t.Error("expected loading false after resolution")
	}
}

func TestStatusFeed(t *testing.T) {
	srv, feed, _, _ := newTestServer(t)
	feed.Replace([]models.Post{
		{ID: 1, CreatedAt: time.Unix(100, 0)},
		{ID: 2, CreatedAt: time.Unix(200, 0)},
	})

	_, body := get(t, srv, "/v1/feed")
	if body["count"] != float64(2) {
		t.Errorf("expected count 2, got %v", body["count"])
	}

	// Sort is a view parameter applied to the snapshot.
	_, body = get(t, srv, "/v1/feed?sort=newest")
	posts := body["posts"].([]any)
	first := posts[0].(map[string]any)
	if first["id"] != float64(2) {
		t.Errorf("expected newest post first, got id %v", first["id"])
	}
}

func TestStatusNotifications(t *testing.T) {
	srv, _, notes, _ := newTestServer(t)
	notes.Replace([]models.Notification{
		{ID: 1},
		{ID: 2, Read: true},
	})

	_, body := get(t, srv, "/v1/notifications")
	if body["count"] != float64(2) {
		t.Errorf("expected count 2, got %v", body["count"])
	}
	if body["unread"] != float64(1) {
		t.Errorf("expected 1 unread, got %v", body["unread"])
	}
}

func TestStatusMetricsExposed(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from metrics endpoint, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected metrics exposition output")
	}
}

func TestStatusServeShutsDownOnCancel(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
