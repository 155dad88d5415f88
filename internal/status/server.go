// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

/*
server.go - Local Status Endpoint

A loopback HTTP server exposing the mirror's state: health, Prometheus
metrics, and read-only JSON snapshots of the reconciled feed and
notification lists. It binds to localhost by default and carries no
authentication, so the listen address should stay private.
*/

package status

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loopin-app/loopctl/internal/live"
	"github.com/loopin-app/loopctl/internal/logging"
	"github.com/loopin-app/loopctl/internal/reconcile"
	"github.com/loopin-app/loopctl/internal/session"
)

// Config configures the status server.
type Config struct {
	ListenAddr    string
	Session       *session.Store
	Feed          *reconcile.FeedStore
	Notifications *reconcile.NotificationStore

	// LiveState reports the current live channel state. The channel itself
	// is rebuilt per session, so the server holds a getter rather than the
	// channel.
	LiveState func() live.State
}

// Server serves the status endpoint. It implements suture.Service via Serve.
type Server struct {
	cfg    Config
	router chi.Router
}

// NewServer builds the server and its routes.
func NewServer(cfg Config) *Server {
	s := &Server{cfg: cfg}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Get("/session", s.handleSession)
		r.Get("/feed", s.handleFeed)
		r.Get("/notifications", s.handleNotifications)
	})

	s.router = r
	return s
}

// Serve runs the HTTP server until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.cfg.ListenAddr).Msg("[status] listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"loading":   s.cfg.Session.Loading(),
		"signed_in": s.cfg.Session.SignedIn(),
		"elevated":  s.cfg.Session.Admin() != nil && s.cfg.Session.Admin().Token() != "",
		"live":      s.cfg.LiveState().String(),
	}
	if u := s.cfg.Session.User(); u != nil {
		resp["user"] = u
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	posts := s.cfg.Feed.Snapshot()
	if order := reconcile.SortOrder(r.URL.Query().Get("sort")); order != "" {
		posts = reconcile.SortPosts(posts, order)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(posts),
		"posts": posts,
	})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	items := s.cfg.Notifications.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"count":         len(items),
		"unread":        s.cfg.Notifications.UnreadCount(),
		"notifications": items,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("[status] response encode failed")
	}
}

func (s *Server) String() string { return "status.Server" }
