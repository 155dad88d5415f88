// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/loopin-app/loopctl/internal/logging"
	"github.com/loopin-app/loopctl/internal/models"
)

// ProfileFetcher fetches the backend profile for the current credential.
// Implemented by the API client; declared here to break the construction
// cycle between the session store and the client.
type ProfileFetcher interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}

// Store holds the active session: the provider credential and the backend
// profile fetched with it. Exactly one Store exists per process. All methods
// are safe for concurrent use.
//
// The store starts in a loading phase and stays there until the first
// provider state report arrives (HandleSignIn or ResolveSignedOut). Route
// guarding is suppressed during loading so a user is never redirected before
// the provider has said anything.
type Store struct {
	admin *AdminStore

	mu       sync.RWMutex
	provider TokenSource
	user     *models.User
	loading  bool
	fetch    ProfileFetcher
	subs     map[int]func(*models.User)
	nextSub  int
}

// NewStore creates a session store in the loading phase. admin may be nil
// when no elevated credential store is configured.
func NewStore(admin *AdminStore) *Store {
	return &Store{admin: admin, loading: true}
}

// SetProfileFetcher wires the backend profile fetcher. Must be called before
// the first sign-in.
func (s *Store) SetProfileFetcher(f ProfileFetcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetch = f
}

// HandleSignIn reports a provider sign-in. The credential is stored first,
// then the backend profile is fetched with it. A failed profile fetch is
// logged and leaves the user unset: the session fails open to the logged-out
// view rather than erroring hard.
func (s *Store) HandleSignIn(ctx context.Context, src TokenSource) {
	s.mu.Lock()
	s.provider = src
	fetch := s.fetch
	s.mu.Unlock()

	var user *models.User
	if fetch != nil {
		u, err := fetch.CurrentUser(ctx)
		if err != nil {
			logging.Warn().Err(err).Msg("[session] backend profile fetch failed, staying logged out")
		} else {
			user = u
		}
	}

	s.mu.Lock()
	s.user = user
	s.loading = false
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(user)
	}
}

// ResolveSignedOut reports that the provider has no session. Ends the
// loading phase without a user.
func (s *Store) ResolveSignedOut() {
	s.mu.Lock()
	s.provider = nil
	s.user = nil
	s.loading = false
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(nil)
	}
}

// SignOut clears the provider credential and the profile synchronously.
func (s *Store) SignOut() {
	s.mu.Lock()
	s.provider = nil
	s.user = nil
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	logging.Info().Msg("[session] signed out")
	for _, fn := range subs {
		fn(nil)
	}
}

// Refresh re-fetches the backend profile with the current credential. Used
// after profile edits. Idempotent, and a no-op when signed out.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.RLock()
	provider := s.provider
	fetch := s.fetch
	s.mu.RUnlock()

	if provider == nil || fetch == nil {
		return nil
	}

	user, err := fetch.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("profile refresh failed: %w", err)
	}
	if user == nil {
		return nil
	}

	s.mu.Lock()
	// Sign-out may have raced the fetch; a cleared session stays cleared.
	if s.provider == nil {
		s.mu.Unlock()
		return nil
	}
	s.user = user
	s.mu.Unlock()
	return nil
}

// User returns the current backend profile, nil when logged out.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Loading reports whether the initial session resolution is still pending.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SignedIn reports whether a provider credential is present. The profile
// may still be nil if the backend fetch failed.
func (s *Store) SignedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider != nil
}

// Subscribe registers a callback invoked with the new user on every session
// change (sign-in, sign-out, initial resolution). Callbacks run on the
// mutating goroutine and must not block. The returned func removes the
// subscription; calling it more than once is harmless.
func (s *Store) Subscribe(fn func(*models.User)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]func(*models.User))
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// snapshotSubsLocked copies the subscriber set so callbacks run outside the
// lock. Caller holds mu.
func (s *Store) snapshotSubsLocked() []func(*models.User) {
	subs := make([]func(*models.User), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

// ProviderToken resolves the provider credential.
func (s *Store) ProviderToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	provider := s.provider
	s.mu.RUnlock()

	if provider == nil {
		return "", fmt.Errorf("no active session")
	}
	return provider.Token(ctx)
}

// AuthToken resolves the credential for an outbound request. The elevated
// credential, when present, takes priority over the provider token.
func (s *Store) AuthToken(ctx context.Context) (token string, elevated bool, err error) {
	if s.admin != nil {
		if t := s.admin.Token(); t != "" {
			return t, true, nil
		}
	}

	token, err = s.ProviderToken(ctx)
	return token, false, err
}

// Admin exposes the elevated credential store, nil when unconfigured.
func (s *Store) Admin() *AdminStore {
	return s.admin
}
