// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/loopin-app/loopctl/internal/models"
)

// voteRequest targets exactly one of post or comment.
type voteRequest struct {
	PostID    *int64 `json:"post_id,omitempty"`
	CommentID *int64 `json:"comment_id,omitempty"`
	VoteType  int    `json:"vote_type"`
}

// VoteResult carries the backend's authoritative tallies after a vote.
// The optimistic layer reconciles local state against these.
type VoteResult struct {
	Status    string `json:"status"` // "removed", "switched", "created"
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
}

// VotePost casts, switches, or toggles off a vote on a post. The backend
// derives the toggle semantics from the viewer's existing vote.
func (c *Client) VotePost(ctx context.Context, postID int64, dir models.VoteDirection) (*VoteResult, error) {
	return c.castVote(ctx, voteRequest{PostID: &postID, VoteType: int(dir)})
}

// VoteComment casts, switches, or toggles off a vote on a comment.
func (c *Client) VoteComment(ctx context.Context, commentID int64, dir models.VoteDirection) (*VoteResult, error) {
	return c.castVote(ctx, voteRequest{CommentID: &commentID, VoteType: int(dir)})
}

func (c *Client) castVote(ctx context.Context, req voteRequest) (*VoteResult, error) {
	if req.VoteType != int(models.VoteUp) && req.VoteType != int(models.VoteDown) {
		return nil, fmt.Errorf("cast_vote: invalid vote direction %d", req.VoteType)
	}

	var result VoteResult
	err := c.do(ctx, "cast_vote", requestOpts{
		method:   http.MethodPost,
		path:     "/votes/",
		jsonBody: req,
		out:      &result,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// reactionRequest toggles one emoji on one target.
type reactionRequest struct {
	Emoji      string `json:"emoji"`
	TargetType string `json:"target_type"` // models.TargetPost or models.TargetComment
	TargetID   int64  `json:"target_id"`
}

// ToggleReaction flips the viewer's reaction for one emoji on a post or
// comment. The backend returns the updated aggregate reaction list.
func (c *Client) ToggleReaction(ctx context.Context, targetType string, targetID int64, emoji string) ([]models.Reaction, error) {
	if targetType != models.TargetPost && targetType != models.TargetComment {
		return nil, fmt.Errorf("toggle_reaction: invalid target type %q", targetType)
	}

	var reactions []models.Reaction
	err := c.do(ctx, "toggle_reaction", requestOpts{
		method:   http.MethodPost,
		path:     "/reactions/",
		jsonBody: reactionRequest{Emoji: emoji, TargetType: targetType, TargetID: targetID},
		out:      &reactions,
	})
	if err != nil {
		return nil, err
	}
	return reactions, nil
}
