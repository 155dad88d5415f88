// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package models

import "time"

// VoteDirection is the tri-state vote a user can hold on a post or comment.
// The wire format matches the backend: 1 = up, -1 = down, absent = none.
type VoteDirection int

const (
	VoteNone VoteDirection = 0
	VoteUp   VoteDirection = 1
	VoteDown VoteDirection = -1
)

// Post is a feed entry. Identity is the numeric id, unique within the feed.
// Author is nil for anonymous ("ghost") posts when the viewer is not
// privileged to unmask them.
type Post struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Department  string     `json:"department"`
	Type        string     `json:"type"`
	Tags        string     `json:"tags,omitempty"`
	IsAnonymous bool       `json:"is_anonymous,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	AuthorID    *int64     `json:"author_id,omitempty"`
	Author      *User      `json:"author,omitempty"`
	Upvotes     int        `json:"upvotes"`
	Downvotes   int        `json:"downvotes"`
	Comments    int        `json:"comments_count"`
	ShareCount  int        `json:"share_count,omitempty"`
	UserVote    *int       `json:"user_vote,omitempty"`
	IsPinned    bool       `json:"is_pinned,omitempty"`
	PinnedUntil *time.Time `json:"pinned_until,omitempty"`
}

// NetVotes returns the displayed tally (upvotes minus downvotes).
func (p *Post) NetVotes() int {
	return p.Upvotes - p.Downvotes
}

// Vote returns the viewer's current vote as a VoteDirection.
func (p *Post) Vote() VoteDirection {
	if p.UserVote == nil {
		return VoteNone
	}
	return VoteDirection(*p.UserVote)
}

// NewPost is the payload for creating a post.
type NewPost struct {
	Title       string `json:"title" validate:"required"`
	Content     string `json:"content" validate:"required"`
	Department  string `json:"department" validate:"required"`
	Type        string `json:"type"`
	Tags        string `json:"tags,omitempty"`
	IsAnonymous bool   `json:"is_anonymous,omitempty"`
}

// DepartmentAll is the sentinel meaning "no department filter" when
// listing posts. It is never sent to the backend as a filter value.
const DepartmentAll = "ALL"
