// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

// Package main is the entry point for the loopctl daemon.
//
// Loopctl maintains a local mirror of a Loop.in campus feed: it signs in
// with a provider identity token, loads the feed and notification lists over
// REST, and keeps them current from the backend's live WebSocket channel. A
// loopback HTTP endpoint exposes the mirrored state and Prometheus metrics.
//
// # Startup order
//
//  1. Configuration: Koanf v2 layering defaults, YAML file, environment
//  2. Logging: zerolog, level and format from configuration
//  3. Session: elevated token store, then provider credential resolution
//  4. API client: rate-limited, circuit-broken REST client
//  5. Supervisor tree: sync pump and status server under suture
//
// # Configuration
//
// Highest priority wins:
//   - Environment variables (API_BASE_URL, AUTH_ID_TOKEN, ...)
//   - Config file (loopctl.yaml, or LOOPCTL_CONFIG)
//   - Built-in defaults
//
// # Signal handling
//
// SIGINT and SIGTERM shut the tree down gracefully: the live channel sends
// a close frame, the status server drains in-flight requests (10s timeout).
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/loopin-app/loopctl/internal/api"
	"github.com/loopin-app/loopctl/internal/config"
	"github.com/loopin-app/loopctl/internal/feedsync"
	"github.com/loopin-app/loopctl/internal/live"
	"github.com/loopin-app/loopctl/internal/logging"
	"github.com/loopin-app/loopctl/internal/reconcile"
	"github.com/loopin-app/loopctl/internal/session"
	"github.com/loopin-app/loopctl/internal/status"
	"github.com/loopin-app/loopctl/internal/supervisor"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("api_base_url", cfg.API.BaseURL).
		Str("status_addr", cfg.Status.ListenAddr).
		Msg("Starting loopctl")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session layer
	admin, err := session.NewAdminStore(cfg.Auth.AdminTokenPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open elevated token store")
	}
	store := session.NewStore(admin)

	// API client
	client := api.New(api.Config{
		BaseURL:     cfg.API.BaseURL,
		Timeout:     cfg.API.Timeout,
		RateLimit:   cfg.API.RateLimit,
		RateBurst:   cfg.API.RateBurst,
		Credentials: store,
		OnSessionInvalid: func(reason string) {
			logging.Warn().Str("reason", reason).Msg("Session invalidated by backend")
			store.SignOut()
		},
	})
	store.SetProfileFetcher(client)

	// Reconciled state
	feed := reconcile.NewFeedStore()
	notifications := reconcile.NewNotificationStore()

	// Live channel, rebuilt per session. The status endpoint reads the
	// active channel's state, so the current one is tracked under a lock.
	var (
		channelMu sync.Mutex
		channel   *live.Channel
	)
	newChannel := func(userID int64) *live.Channel {
		url := cfg.Live.URL
		if url == "" {
			derived, derr := live.DeriveURL(cfg.API.BaseURL, userID)
			if derr != nil {
				logging.Error().Err(derr).Msg("Failed to derive live endpoint")
			}
			url = derived
		}
		ch := live.New(live.Config{
			URL:              url,
			HandshakeTimeout: cfg.Live.HandshakeTimeout,
			ReadTimeout:      cfg.Live.ReadTimeout,
			PingInterval:     cfg.Live.PingInterval,
		})
		channelMu.Lock()
		channel = ch
		channelMu.Unlock()
		return ch
	}
	liveState := func() live.State {
		channelMu.Lock()
		defer channelMu.Unlock()
		if channel == nil {
			return live.StateDisconnected
		}
		return channel.State()
	}

	// Supervisor tree
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	tree.AddSyncService(feedsync.NewPump(feedsync.Config{
		Session:       store,
		Client:        client,
		Feed:          feed,
		Notifications: notifications,
		NewChannel:    newChannel,
	}))

	if cfg.Status.Enabled {
		tree.AddStatusService(status.NewServer(status.Config{
			ListenAddr:    cfg.Status.ListenAddr,
			Session:       store,
			Feed:          feed,
			Notifications: notifications,
			LiveState:     liveState,
		}))
		logging.Info().Str("addr", cfg.Status.ListenAddr).Msg("Status endpoint enabled")
	}

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Resolve the provider session once the tree is up. The pump picks the
	// result up through its session subscription.
	resolveSession(ctx, cfg, store)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// resolveSession reports the configured provider credential to the session
// store, ending the loading phase one way or the other.
func resolveSession(ctx context.Context, cfg *config.Config, store *session.Store) {
	var src session.TokenSource
	switch {
	case cfg.Auth.IDToken != "":
		src = session.StaticTokenSource(cfg.Auth.IDToken)
	case cfg.Auth.IDTokenFile != "":
		src = session.NewCachingTokenSource(&session.FileTokenSource{Path: cfg.Auth.IDTokenFile}, 0)
	}

	if src == nil {
		logging.Info().Msg("No provider credential configured, starting signed out")
		store.ResolveSignedOut()
		return
	}

	store.HandleSignIn(ctx, src)
	if store.User() == nil && store.Admin().Token() == "" {
		logging.Warn().Msg("Credential configured but no profile resolved")
	}
}
