// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package session

import "strings"

// LoginPath is where unauthenticated users are sent.
const LoginPath = "/login"

// protectedPaths require a signed-in user. Prefix match, so /profile/edit
// is covered by /profile.
var protectedPaths = []string{
	"/create-post",
	"/profile",
	"/settings",
}

// GuardRoute decides whether navigating to path requires a redirect to the
// sign-in page. It never redirects while the initial session resolution is
// still in flight: before the provider has reported state, every route is
// provisionally allowed.
func (s *Store) GuardRoute(path string) (redirect string, ok bool) {
	if s.Loading() {
		return "", false
	}
	if !isProtected(path) {
		return "", false
	}
	if s.SignedIn() {
		return "", false
	}
	return LoginPath, true
}

func isProtected(path string) bool {
	for _, p := range protectedPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
