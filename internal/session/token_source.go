// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

// Package session is the single source of truth for "who is the current
// user". It tracks the identity-provider credential, the backend profile
// fetched with it, and the locally persisted elevated (admin) credential,
// and gates route access until the initial resolution completes.
package session

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource supplies the identity-provider credential. Implementations
// must be safe for concurrent use. The provider owns issuance and renewal;
// loopctl only asks for the current token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

var (
	_ TokenSource = StaticTokenSource("")
	_ TokenSource = (*FileTokenSource)(nil)
	_ TokenSource = (*CachingTokenSource)(nil)
)

// StaticTokenSource returns the same token on every call.
type StaticTokenSource string

// Token implements TokenSource.
func (s StaticTokenSource) Token(context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("no token configured")
	}
	return string(s), nil
}

// FileTokenSource reads the token from a file on every call, so an external
// agent can rotate the credential in place. Wrap it in a CachingTokenSource
// to avoid a file read per request.
type FileTokenSource struct {
	Path string
}

// Token implements TokenSource.
func (f *FileTokenSource) Token(context.Context) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", f.Path)
	}
	return token, nil
}

// CachingTokenSource caches the token from an underlying source and asks for
// a fresh one only when the cached token is stale. Staleness is decided from
// the JWT exp claim (unverified parse; the backend verifies signatures, the
// client only needs the expiry). Tokens that are not JWTs never go stale.
type CachingTokenSource struct {
	src    TokenSource
	leeway time.Duration

	mu     sync.Mutex
	token  string
	expiry time.Time // zero = no known expiry
}

// NewCachingTokenSource wraps src. Tokens within leeway of their expiry are
// treated as already stale, so mid-refresh requests never carry a token that
// dies in flight.
func NewCachingTokenSource(src TokenSource, leeway time.Duration) *CachingTokenSource {
	if leeway <= 0 {
		leeway = 30 * time.Second
	}
	return &CachingTokenSource{src: src, leeway: leeway}
}

// Token implements TokenSource.
func (c *CachingTokenSource) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && (c.expiry.IsZero() || time.Now().Before(c.expiry.Add(-c.leeway))) {
		return c.token, nil
	}

	token, err := c.src.Token(ctx)
	if err != nil {
		return "", err
	}

	c.token = token
	c.expiry = tokenExpiry(token)
	return token, nil
}

// tokenExpiry extracts the exp claim from a JWT without verifying it.
// Returns the zero time when the token is not a JWT or carries no expiry.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
