// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package optimistic

import (
	"context"
	"fmt"

	"github.com/loopin-app/loopctl/internal/api"
	"github.com/loopin-app/loopctl/internal/models"
)

// VoteState is the voting slice of a post or comment.
type VoteState struct {
	Upvotes   int
	Downvotes int
	UserVote  models.VoteDirection
}

// NextVoteState computes the local effect of casting direction on cur. A
// repeat of the current vote removes it; switching sides moves the tally on
// both counters.
func NextVoteState(cur VoteState, direction models.VoteDirection) VoteState {
	next := cur

	// Retract the existing vote first.
	switch cur.UserVote {
	case models.VoteUp:
		next.Upvotes--
	case models.VoteDown:
		next.Downvotes--
	}

	if direction == cur.UserVote {
		// Toggling off: the retraction is the whole effect.
		next.UserVote = models.VoteNone
		return next
	}

	switch direction {
	case models.VoteUp:
		next.Upvotes++
	case models.VoteDown:
		next.Downvotes++
	}
	next.UserVote = direction
	return next
}

// voteCaller is the slice of the API client a vote needs.
type voteCaller interface {
	VotePost(ctx context.Context, postID int64, direction models.VoteDirection) (*api.VoteResult, error)
	VoteComment(ctx context.Context, commentID int64, direction models.VoteDirection) (*api.VoteResult, error)
}

// VotePost casts a vote on a post optimistically. read/write bridge the
// mutation to wherever the post lives (the feed store or a detail view).
func VotePost(
	ctx context.Context,
	client voteCaller,
	postID int64,
	direction models.VoteDirection,
	read func() (VoteState, bool),
	write func(VoteState),
) error {
	return vote(ctx, "vote_post", direction, read, write, func(ctx context.Context) (*api.VoteResult, error) {
		return client.VotePost(ctx, postID, direction)
	})
}

// VoteComment casts a vote on a comment optimistically.
func VoteComment(
	ctx context.Context,
	client voteCaller,
	commentID int64,
	direction models.VoteDirection,
	read func() (VoteState, bool),
	write func(VoteState),
) error {
	return vote(ctx, "vote_comment", direction, read, write, func(ctx context.Context) (*api.VoteResult, error) {
		return client.VoteComment(ctx, commentID, direction)
	})
}

func vote(
	ctx context.Context,
	name string,
	direction models.VoteDirection,
	read func() (VoteState, bool),
	write func(VoteState),
	invoke func(ctx context.Context) (*api.VoteResult, error),
) error {
	cur, ok := read()
	if !ok {
		return fmt.Errorf("%s: target not in local state", name)
	}

	return Run(ctx, Mutation[VoteState, *api.VoteResult]{
		Name:     name,
		Snapshot: func() VoteState { return cur },
		Predict: func(s VoteState) VoteState {
			return NextVoteState(s, direction)
		},
		Apply:  write,
		Invoke: invoke,
		Reconcile: func(r *api.VoteResult) {
			// The server's tallies win; the vote direction follows the
			// predicted toggle, which the server applies the same way.
			authoritative := NextVoteState(cur, direction)
			authoritative.Upvotes = r.Upvotes
			authoritative.Downvotes = r.Downvotes
			write(authoritative)
		},
	})
}
