// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package optimistic

import (
	"context"
	"fmt"

	"github.com/loopin-app/loopctl/internal/models"
)

// NextReactions computes the local effect of the user toggling emoji on a
// reaction list. Absent emoji: appended with count 1. Present but not by
// the user: incremented. Already by the user: decremented, and removed
// entirely at zero.
func NextReactions(cur []models.Reaction, emoji string) []models.Reaction {
	next := make([]models.Reaction, 0, len(cur)+1)

	found := false
	for _, r := range cur {
		if r.Emoji != emoji {
			next = append(next, r)
			continue
		}
		found = true
		if r.UserReacted {
			r.Count--
			r.UserReacted = false
			if r.Count <= 0 {
				continue
			}
		} else {
			r.Count++
			r.UserReacted = true
		}
		next = append(next, r)
	}

	if !found {
		next = append(next, models.Reaction{Emoji: emoji, Count: 1, UserReacted: true})
	}
	return next
}

// reactionCaller is the slice of the API client a reaction toggle needs.
type reactionCaller interface {
	ToggleReaction(ctx context.Context, targetType string, targetID int64, emoji string) ([]models.Reaction, error)
}

// ToggleReaction toggles the user's reaction optimistically, replacing the
// local list with the server's authoritative one on success.
func ToggleReaction(
	ctx context.Context,
	client reactionCaller,
	targetType string,
	targetID int64,
	emoji string,
	read func() ([]models.Reaction, bool),
	write func([]models.Reaction),
) error {
	cur, ok := read()
	if !ok {
		return fmt.Errorf("toggle_reaction: target not in local state")
	}

	return Run(ctx, Mutation[[]models.Reaction, []models.Reaction]{
		Name:     "toggle_reaction",
		Snapshot: func() []models.Reaction { return cloneReactions(cur) },
		Predict: func(s []models.Reaction) []models.Reaction {
			return NextReactions(s, emoji)
		},
		Apply: write,
		Invoke: func(ctx context.Context) ([]models.Reaction, error) {
			return client.ToggleReaction(ctx, targetType, targetID, emoji)
		},
		Reconcile: func(r []models.Reaction) {
			write(r)
		},
	})
}

func cloneReactions(in []models.Reaction) []models.Reaction {
	out := make([]models.Reaction, len(in))
	copy(out, in)
	return out
}
