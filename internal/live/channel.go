// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

/*
channel.go - Live Event Channel

One WebSocket connection per signed-in session, fanning decoded events out
to subscribers with latest-value semantics: a slow subscriber misses
intermediate events rather than queueing them. The client only needs
incremental UI-style updates, not an authoritative event log.

The channel never reconnects on its own. A dropped connection transitions to
Disconnected and stays there until the next session change asks for a new
connection.

WebSocket Endpoint: ws://{backend}/notifications/ws/{user_id}
*/

package live

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/loopin-app/loopctl/internal/logging"
	"github.com/loopin-app/loopctl/internal/metrics"
	"github.com/loopin-app/loopctl/internal/models"
)

// State is the channel connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Config configures a Channel.
type Config struct {
	// URL is the fully built WebSocket endpoint, including the user id.
	URL string

	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	PingInterval     time.Duration
}

// Channel manages the live WebSocket connection and event fan-out.
type Channel struct {
	cfg Config

	mu       sync.Mutex
	state    State
	conn     *websocket.Conn
	stopChan chan struct{}
	wg       sync.WaitGroup

	subMu   sync.RWMutex
	subs    map[int]chan models.Event
	nextSub int

	latestMu  sync.RWMutex
	latest    models.Event
	hasLatest bool
}

// New creates a disconnected Channel.
func New(cfg Config) *Channel {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 60 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	return &Channel{
		cfg:  cfg,
		subs: make(map[int]chan models.Event),
	}
}

// DeriveURL builds the live endpoint from the REST base URL and the
// signed-in user's id.
func DeriveURL(apiBaseURL string, userID int64) (string, error) {
	parsed, err := url.Parse(apiBaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	switch parsed.Scheme {
	case "https":
		parsed.Scheme = "wss"
	default:
		parsed.Scheme = "ws"
	}
	parsed.Path = fmt.Sprintf("/notifications/ws/%d", userID)
	parsed.RawQuery = ""

	return parsed.String(), nil
}

// Connect establishes the WebSocket connection. A Connect while already
// connecting or connected is a no-op: at most one socket per session.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	logging.Info().Str("url", c.cfg.URL).Msg("[live] connecting")

	dialer := websocket.Dialer{
		HandshakeTimeout:  c.cfg.HandshakeTimeout,
		EnableCompression: true,
	}

	conn, resp, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		c.mu.Lock()
		c.setStateLocked(StateDisconnected)
		c.mu.Unlock()
		if resp != nil {
			return fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.stopChan = make(chan struct{})
	c.setStateLocked(StateConnected)
	stop := c.stopChan
	c.mu.Unlock()

	logging.Info().Msg("[live] connected")

	c.wg.Add(2)
	go c.listen(conn, stop)
	go c.pingLoop(conn, stop)

	return nil
}

// listen reads frames until the connection drops or Close is called.
func (c *Channel) listen(conn *websocket.Conn, stop chan struct{}) {
	defer c.wg.Done()

	for {
		select {
		case <-stop:
			return
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout)); err != nil {
			logging.Warn().Err(err).Msg("[live] failed to set read deadline")
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Info().Msg("[live] connection closed normally")
			} else {
				select {
				case <-stop:
					// Close() already owns the teardown.
				default:
					logging.Warn().Err(err).Msg("[live] read error, disconnecting")
				}
			}
			c.teardown(conn)
			return
		}

		c.handleFrame(message)
	}
}

// handleFrame decodes one frame and publishes the event. A parse failure is
// logged and the frame discarded; it never crashes the channel.
func (c *Channel) handleFrame(frame []byte) {
	event, err := models.DecodeEvent(frame)
	if err != nil {
		metrics.LiveFramesMalformed.Inc()
		logging.Warn().Err(err).Msg("[live] dropping malformed frame")
		return
	}

	metrics.LiveEventsReceived.WithLabelValues(event.Type).Inc()
	if event.Kind == models.KindIgnored {
		logging.Debug().Str("type", event.Type).Msg("[live] ignoring unknown event type")
	}

	c.publish(event)
}

// publish stores the event as the latest value and offers it to every
// subscriber, displacing an unconsumed previous event.
func (c *Channel) publish(event models.Event) {
	c.latestMu.Lock()
	c.latest = event
	c.hasLatest = true
	c.latestMu.Unlock()

	c.subMu.RLock()
	defer c.subMu.RUnlock()
	for _, ch := range c.subs {
		select {
		case ch <- event:
		default:
			// Slot occupied: drop the stale event, keep the newest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- event:
			default:
			}
		}
	}
}

// pingLoop keeps the connection alive.
func (c *Channel) pingLoop(conn *websocket.Conn, stop chan struct{}) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			deadline := time.Now().Add(5 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				logging.Warn().Err(err).Msg("[live] keep-alive failed")
				c.teardown(conn)
				return
			}
		}
	}
}

// teardown closes the given connection and transitions to Disconnected,
// unless a newer connection has already replaced it.
func (c *Channel) teardown(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != conn {
		return
	}

	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	_ = conn.Close()
	c.conn = nil
	c.setStateLocked(StateDisconnected)
}

// Close shuts the channel down: sign-out and component teardown both land
// here. Safe to call repeatedly and while disconnected.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.stopChan != nil {
		select {
		case <-c.stopChan:
			// already closed
		default:
			close(c.stopChan)
		}
	}
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		c.teardown(conn)
	}
	c.wg.Wait()
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Latest returns the most recently decoded event, if any.
func (c *Channel) Latest() (models.Event, bool) {
	c.latestMu.RLock()
	defer c.latestMu.RUnlock()
	return c.latest, c.hasLatest
}

// Subscribe registers for events. The returned channel holds at most the
// single newest undelivered event. The cancel func must be called on
// teardown so a dead consumer stops receiving.
func (c *Channel) Subscribe() (<-chan models.Event, func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan models.Event, 1)
	c.subs[id] = ch

	cancel := func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// setStateLocked updates the state and its gauge. Callers hold c.mu.
func (c *Channel) setStateLocked(s State) {
	c.state = s
	metrics.LiveConnectionState.Set(float64(s))
}
