// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package models

import "time"

// Comment is a single entry in a post's comment forest. Roots carry a nil
// ParentID; replies reference their parent's id. The backend delivers
// comments flat, ordering and tree shape are a client concern.
type Comment struct {
	ID        int64      `json:"id"`
	PostID    int64      `json:"post_id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	AuthorID  *int64     `json:"author_id,omitempty"`
	Author    *User      `json:"author,omitempty"`
	ParentID  *int64     `json:"parent_id,omitempty"`
	Upvotes   int        `json:"upvotes"`
	Downvotes int        `json:"downvotes"`
	UserVote  *int       `json:"user_vote,omitempty"`
	Reactions []Reaction `json:"reactions,omitempty"`

	// Replies is populated client-side by the tree builder, never by the wire.
	Replies []*Comment `json:"replies,omitempty"`
}

// Vote returns the viewer's current vote as a VoteDirection.
func (c *Comment) Vote() VoteDirection {
	if c.UserVote == nil {
		return VoteNone
	}
	return VoteDirection(*c.UserVote)
}

// Reaction is an aggregated per-emoji reaction tally on a post or comment.
// UserReacted marks whether the current viewer contributed to the count.
type Reaction struct {
	Emoji       string `json:"emoji"`
	Count       int    `json:"count"`
	UserReacted bool   `json:"user_reacted"`
}

// Reaction target types accepted by the backend.
const (
	TargetPost    = "post"
	TargetComment = "comment"
)
