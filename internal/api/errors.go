// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired marks a 401 received while no provider session exists.
// The client has already emitted the session-invalidation signal when this
// is returned; callers should stop, not retry.
var ErrSessionExpired = errors.New("session expired")

// ReasonSessionExpired is the reason flag attached to the forced
// navigation to the sign-in page.
const ReasonSessionExpired = "session_expired"

// Error is a non-2xx response from the Loop.in backend.
type Error struct {
	Op     string // operation name, e.g. "list_posts"
	Status int
	Body   string
}

func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: backend returned status %d: %s", e.Op, e.Status, e.Body)
}

// IsStatus reports whether err is a backend Error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsUnauthorized reports whether err is a backend 401.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}
