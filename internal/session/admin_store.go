// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// AdminStore persists the single elevated (admin) bearer token under a fixed
// path. The elevated credential outlives the process and takes precedence
// over the provider credential on every request until cleared.
type AdminStore struct {
	path string

	mu    sync.RWMutex
	token string
}

// NewAdminStore opens the store at path, loading any previously persisted
// token. A missing file means no elevated credential.
func NewAdminStore(path string) (*AdminStore, error) {
	s := &AdminStore{path: path}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		s.token = strings.TrimSpace(string(data))
	case errors.Is(err, os.ErrNotExist):
		// no elevated credential yet
	default:
		return nil, fmt.Errorf("failed to read admin token store: %w", err)
	}

	return s, nil
}

// Token returns the elevated credential, or empty when none is stored.
func (s *AdminStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set persists a new elevated credential.
func (s *AdminStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create admin token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to persist admin token: %w", err)
	}

	s.token = token
	return nil
}

// Clear removes the persisted credential. Called on admin logout; clearing
// an already empty store is a no-op.
func (s *AdminStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear admin token: %w", err)
	}

	s.token = ""
	return nil
}
