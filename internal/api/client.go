// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

/*
client.go - Loop.in REST API Client

Every outbound request carries a bearer credential resolved through the
session store (elevated admin token first, provider token second) and a
request id for log correlation. 401 responses are normalized centrally:

  - elevated-credential requests propagate the 401 untouched, the admin
    flow handles it locally
  - no provider session: the session-invalidation signal fires and the
    call fails with ErrSessionExpired
  - provider session present: the 401 is treated as transient (the token
    may be mid-refresh) and returned to the caller undecorated
*/

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/loopin-app/loopctl/internal/logging"
	"github.com/loopin-app/loopctl/internal/metrics"
	"github.com/loopin-app/loopctl/internal/session"
)

// The session store is the production credential source, and the client is
// the session's profile fetcher.
var (
	_ CredentialSource       = (*session.Store)(nil)
	_ session.ProfileFetcher = (*Client)(nil)
)

// CredentialSource resolves the bearer credential for outbound requests.
// Implemented by the session store.
type CredentialSource interface {
	// AuthToken returns the credential and whether it is the elevated one.
	AuthToken(ctx context.Context) (token string, elevated bool, err error)
	// SignedIn reports whether a provider session exists.
	SignedIn() bool
}

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// RateLimit caps outbound requests per second; 0 disables the limiter.
	RateLimit float64
	RateBurst int

	Credentials CredentialSource

	// OnSessionInvalid is the forced-navigation signal: invoked with a
	// reason flag when a 401 arrives and no provider session exists.
	// Optional.
	OnSessionInvalid func(reason string)
}

// Client is the Loop.in REST API client. All domain operations are thin
// request builders over do(); business logic lives with the callers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialSource
	limiter    *rate.Limiter
	breaker    *breaker

	onSessionInvalid func(reason string)
}

// New creates a Client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		baseURL:          strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient:       &http.Client{Timeout: timeout},
		creds:            cfg.Credentials,
		limiter:          limiter,
		breaker:          newBreaker("loopin-api"),
		onSessionInvalid: cfg.OnSessionInvalid,
	}
}

// requestOpts shapes a single request.
type requestOpts struct {
	method string
	path   string
	query  url.Values
	// jsonBody is marshaled as the request body when non-nil.
	jsonBody any
	// formBody takes precedence over jsonBody and is sent URL-encoded.
	formBody url.Values
	// out receives the decoded response body when non-nil.
	out any
}

// do performs one API request: rate limit, credential attach, execute
// through the circuit breaker, normalize errors, decode.
func (c *Client) do(ctx context.Context, op string, opts requestOpts) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: rate limiter: %w", op, err)
		}
	}

	req, elevated, err := c.newRequest(ctx, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	start := time.Now()
	resp, err := c.breaker.execute(func() (*http.Response, error) {
		return c.httpClient.Do(req)
	})
	metrics.APIRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequestErrors.WithLabelValues(op, "transport").Inc()
		return fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(op, elevated, resp)
	}

	if opts.out != nil {
		if err := json.NewDecoder(resp.Body).Decode(opts.out); err != nil {
			return fmt.Errorf("%s: failed to decode response: %w", op, err)
		}
	}
	return nil
}

// newRequest builds the HTTP request with body, headers, and credential.
func (c *Client) newRequest(ctx context.Context, opts requestOpts) (*http.Request, bool, error) {
	fullURL := c.baseURL + opts.path
	if len(opts.query) > 0 {
		fullURL += "?" + opts.query.Encode()
	}

	var body io.Reader = http.NoBody
	contentType := "application/json"
	switch {
	case opts.formBody != nil:
		body = strings.NewReader(opts.formBody.Encode())
		contentType = "application/x-www-form-urlencoded"
	case opts.jsonBody != nil:
		data, err := json.Marshal(opts.jsonBody)
		if err != nil {
			return nil, false, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, opts.method, fullURL, body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	// A missing credential is not fatal: the request goes out anonymous and
	// the 401 handling decides what happens, same as a browser session that
	// has not signed in yet.
	var elevated bool
	if c.creds != nil {
		token, elev, err := c.creds.AuthToken(ctx)
		if err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
			elevated = elev
		} else if err != nil {
			logging.Debug().Err(err).Msg("[api] sending request without credential")
		}
	}

	return req, elevated, nil
}

// statusError turns a non-success response into an error, applying the
// central 401 policy.
func (c *Client) statusError(op string, elevated bool, resp *http.Response) error {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if readErr != nil {
		body = nil
	}
	apiErr := &Error{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	metrics.APIRequestErrors.WithLabelValues(op, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusUnauthorized {
		return apiErr
	}

	// Elevated-credential requests keep their 401 untouched.
	if elevated {
		return apiErr
	}

	if c.creds != nil && !c.creds.SignedIn() {
		logging.Warn().Str("op", op).Msg("[api] 401 without a provider session, forcing sign-in")
		if c.onSessionInvalid != nil {
			c.onSessionInvalid(ReasonSessionExpired)
		}
		return fmt.Errorf("%s: %w", op, ErrSessionExpired)
	}

	// A provider session exists: the token may be mid-refresh, so the 401
	// is transient and the caller's error handling decides.
	return apiErr
}
