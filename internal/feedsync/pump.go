// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

/*
pump.go - Session-Driven Sync Pump

The pump watches the session store and drives everything that follows from
a session change: on sign-in it loads the initial feed and notification
snapshots over REST, opens the live channel, and folds incoming events into
the stores; on sign-out it closes the channel and clears local state.

The pump never reconnects a dropped channel. The connection is tied to the
session, so a drop leaves the process on REST data until the next session
change.
*/

package feedsync

import (
	"context"

	"github.com/loopin-app/loopctl/internal/api"
	"github.com/loopin-app/loopctl/internal/live"
	"github.com/loopin-app/loopctl/internal/logging"
	"github.com/loopin-app/loopctl/internal/models"
	"github.com/loopin-app/loopctl/internal/reconcile"
	"github.com/loopin-app/loopctl/internal/session"
)

// Client is the slice of the API client the pump needs.
type Client interface {
	ListPosts(ctx context.Context, opts api.ListPostsOptions) ([]models.Post, error)
	ListNotifications(ctx context.Context, skip, limit int) ([]models.Notification, error)
}

// Config configures a Pump.
type Config struct {
	Session       *session.Store
	Client        Client
	Feed          *reconcile.FeedStore
	Notifications *reconcile.NotificationStore

	// NewChannel builds a live channel for the signed-in user.
	NewChannel func(userID int64) *live.Channel

	// InitialPageSize is how many posts the sign-in load fetches.
	InitialPageSize int
}

// Pump is the session-driven synchronization loop. It implements
// suture.Service via Serve.
type Pump struct {
	cfg    Config
	userCh chan *models.User
}

// NewPump creates a pump. Call Serve to start it.
func NewPump(cfg Config) *Pump {
	if cfg.InitialPageSize <= 0 {
		cfg.InitialPageSize = 20
	}
	return &Pump{
		cfg:    cfg,
		userCh: make(chan *models.User, 1),
	}
}

// pushUser offers a session state to the run loop, displacing any
// undelivered older state so the loop always sees the newest one.
func (p *Pump) pushUser(u *models.User) {
	select {
	case p.userCh <- u:
	default:
		select {
		case <-p.userCh:
		default:
		}
		select {
		case p.userCh <- u:
		default:
		}
	}
}

// Serve runs the pump until ctx is cancelled.
func (p *Pump) Serve(ctx context.Context) error {
	// Session changes are conflated: only the newest state matters. The
	// subscription is released on exit so a supervisor restart does not
	// stack a second one.
	unsubscribe := p.cfg.Session.Subscribe(p.pushUser)
	defer unsubscribe()

	var (
		channel *live.Channel
		events  <-chan models.Event
		cancel  func()
	)
	teardown := func() {
		if channel != nil {
			channel.Close()
			channel = nil
		}
		if cancel != nil {
			cancel()
			cancel = nil
		}
		events = nil
	}
	defer teardown()

	// The session may already be resolved by the time the pump starts.
	if u := p.cfg.Session.User(); u != nil {
		p.pushUser(u)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case u := <-p.userCh:
			teardown()
			if u == nil {
				p.cfg.Feed.Clear()
				p.cfg.Notifications.Clear()
				logging.Info().Msg("[pump] session ended, local state cleared")
				continue
			}

			logging.Info().Int64("user_id", u.ID).Msg("[pump] session started")
			p.initialLoad(ctx)

			channel = p.cfg.NewChannel(u.ID)
			events, cancel = channel.Subscribe()
			if err := channel.Connect(ctx); err != nil {
				logging.Warn().Err(err).Msg("[pump] live channel unavailable, continuing on fetched data")
			}

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			p.fold(ev)
		}
	}
}

// initialLoad fetches the feed and notification snapshots. Either fetch
// failing degrades that list to empty rather than failing the session.
func (p *Pump) initialLoad(ctx context.Context) {
	posts, err := p.cfg.Client.ListPosts(ctx, api.ListPostsOptions{Limit: p.cfg.InitialPageSize})
	if err != nil {
		logging.Warn().Err(err).Msg("[pump] initial feed load failed")
	} else {
		p.cfg.Feed.Replace(posts)
	}

	notes, err := p.cfg.Client.ListNotifications(ctx, 0, p.cfg.InitialPageSize)
	if err != nil {
		logging.Warn().Err(err).Msg("[pump] initial notification load failed")
	} else {
		p.cfg.Notifications.Replace(notes)
	}
}

// fold applies one decoded live event to local state.
func (p *Pump) fold(ev models.Event) {
	switch ev.Kind {
	case models.KindNewPost:
		if ev.Post != nil {
			p.cfg.Feed.MergeNewPost(*ev.Post)
		}
	case models.KindNotification:
		if ev.Notification != nil {
			p.cfg.Notifications.Prepend(*ev.Notification)
		}
	case models.KindIgnored:
		// Decoded but intentionally unhandled.
	}
}

func (p *Pump) String() string { return "feedsync.Pump" }
