// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package reconcile

import (
	"sync"

	"github.com/loopin-app/loopctl/internal/metrics"
	"github.com/loopin-app/loopctl/internal/models"
)

// NotificationStore holds the reconciled notification list. Unlike the feed,
// live notifications are never deduplicated: two comments on the same post
// are two distinct notifications, and the server does not echo ids for
// pushed ones, so every live event is prepended as-is.
type NotificationStore struct {
	mu    sync.RWMutex
	items []models.Notification

	// nextLocalID hands out negative ids for live notifications so MarkRead
	// can address them without colliding with server ids.
	nextLocalID int64
}

// NewNotificationStore returns an empty store.
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{nextLocalID: -1}
}

// Replace installs a fresh snapshot from a REST fetch.
func (s *NotificationStore) Replace(items []models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]models.Notification, len(items))
	copy(s.items, items)
}

// Prepend adds a live-channel notification at the head of the list,
// assigning it a local id when the server did not provide one.
func (s *NotificationStore) Prepend(n models.Notification) models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == 0 {
		n.ID = s.nextLocalID
		s.nextLocalID--
	}
	s.items = append([]models.Notification{n}, s.items...)
	metrics.NotificationsMerged.Inc()
	return n
}

// MarkRead flags one notification as read. Returns false when absent.
func (s *NotificationStore) MarkRead(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			return true
		}
	}
	return false
}

// MarkAllRead flags every notification as read.
func (s *NotificationStore) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		s.items[i].Read = true
	}
}

// UnreadCount returns the number of unread notifications.
func (s *NotificationStore) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for i := range s.items {
		if !s.items[i].Read {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of the current list, newest first.
func (s *NotificationStore) Snapshot() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Clear empties the store. Used on sign-out.
func (s *NotificationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.nextLocalID = -1
}
