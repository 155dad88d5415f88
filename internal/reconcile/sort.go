// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package reconcile

import (
	"sort"

	"github.com/loopin-app/loopctl/internal/models"
)

// SortOrder names a presentation ordering applied to a feed snapshot.
// Ordering is a view concern: the stored list keeps server order plus live
// prepends, and a sorted copy is produced on demand.
type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortOldest    SortOrder = "oldest"
	SortMostLiked SortOrder = "most_liked"
)

// SortPosts returns a sorted copy of posts. An unknown order returns the
// input order unchanged. Ties keep their relative order so repeated sorts
// of the same snapshot agree.
func SortPosts(posts []models.Post, order SortOrder) []models.Post {
	out := make([]models.Post, len(posts))
	copy(out, posts)

	switch order {
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	case SortMostLiked:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].NetVotes() > out[j].NetVotes()
		})
	}

	return out
}
