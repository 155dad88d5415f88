// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

/*
feed.go - Post List Reconciliation

The feed store folds two inputs into one post list: full snapshots from REST
fetches and incremental new-post events from the live channel. Live inserts
are idempotent by post id, so an event for a post already present (for
example the author's own optimistic insert) is a no-op.
*/

package reconcile

import (
	"sync"

	"github.com/loopin-app/loopctl/internal/logging"
	"github.com/loopin-app/loopctl/internal/metrics"
	"github.com/loopin-app/loopctl/internal/models"
)

// FeedStore holds the reconciled post list.
type FeedStore struct {
	mu    sync.RWMutex
	posts []models.Post
	ids   map[int64]struct{}
}

// NewFeedStore returns an empty feed.
func NewFeedStore() *FeedStore {
	return &FeedStore{ids: make(map[int64]struct{})}
}

// Replace installs a fresh snapshot, discarding the previous list. Used for
// initial loads and explicit refreshes.
func (s *FeedStore) Replace(posts []models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = make([]models.Post, len(posts))
	copy(s.posts, posts)
	s.ids = make(map[int64]struct{}, len(posts))
	for _, p := range posts {
		s.ids[p.ID] = struct{}{}
	}
}

// Append adds a further page of posts, skipping any already present.
func (s *FeedStore) Append(posts []models.Post) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, p := range posts {
		if _, dup := s.ids[p.ID]; dup {
			continue
		}
		s.posts = append(s.posts, p)
		s.ids[p.ID] = struct{}{}
		added++
	}
	return added
}

// MergeNewPost prepends a live-channel post. Returns false when the post was
// already present and the feed is unchanged.
func (s *FeedStore) MergeNewPost(post models.Post) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.ids[post.ID]; dup {
		metrics.FeedMerges.WithLabelValues("duplicate").Inc()
		logging.Debug().Int64("post_id", post.ID).Msg("[feed] duplicate live post, skipping")
		return false
	}

	s.posts = append([]models.Post{post}, s.posts...)
	s.ids[post.ID] = struct{}{}
	metrics.FeedMerges.WithLabelValues("inserted").Inc()
	return true
}

// Update replaces the stored post with the same id. Returns false when the
// post is not in the feed.
func (s *FeedStore) Update(post models.Post) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.posts {
		if s.posts[i].ID == post.ID {
			s.posts[i] = post
			return true
		}
	}
	return false
}

// Apply runs fn against the stored post with the given id so callers can
// adjust a post in place under the store lock. Returns false when absent.
func (s *FeedStore) Apply(id int64, fn func(*models.Post)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.posts {
		if s.posts[i].ID == id {
			fn(&s.posts[i])
			return true
		}
	}
	return false
}

// Remove deletes a post from the feed. Returns false when absent.
func (s *FeedStore) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; !ok {
		return false
	}
	delete(s.ids, id)
	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			break
		}
	}
	return true
}

// Get returns a copy of the post with the given id.
func (s *FeedStore) Get(id int64) (models.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.posts {
		if s.posts[i].ID == id {
			return s.posts[i], true
		}
	}
	return models.Post{}, false
}

// Snapshot returns a copy of the current list in feed order.
func (s *FeedStore) Snapshot() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// Len returns the number of posts in the feed.
func (s *FeedStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

// Clear empties the feed. Used on sign-out.
func (s *FeedStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = nil
	s.ids = make(map[int64]struct{})
}
