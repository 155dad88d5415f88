// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

/*
events.go - Live Event Envelope

The Loop.in backend pushes ad hoc JSON envelopes over the notification
WebSocket. The envelope shape is owned by the backend; this file decodes it
into a tagged union so downstream code never touches raw JSON.

Envelope: { type: string, data?: object, title?: string, message?: string, sender?: object }
*/

package models

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Event types observed on the wire.
const (
	EventNewPost = "new_post"
	EventComment = "comment"
	EventUpvote  = "upvote"
)

// EventKind discriminates the decoded union.
type EventKind int

const (
	// KindIgnored is an event the client does not act on (unknown type
	// carrying no displayable content). Routed explicitly so unknown
	// types never pass through as implicit anything.
	KindIgnored EventKind = iota
	// KindNewPost carries a full Post to merge into the feed.
	KindNewPost
	// KindNotification carries a displayable notification.
	KindNotification
)

// eventEnvelope is the raw wire shape.
type eventEnvelope struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data,omitempty"`
	Title   string          `json:"title,omitempty"`
	Message string          `json:"message,omitempty"`
	Sender  *Sender         `json:"sender,omitempty"`
}

// Event is one decoded live event. Exactly one of Post / Notification is
// non-nil depending on Kind.
type Event struct {
	Kind EventKind
	Type string

	Post         *Post
	Notification *Notification
}

// DecodeEvent parses a raw WebSocket frame into an Event.
//
// Known types:
//   - new_post: Data holds the full post record
//   - comment, upvote: social notification about the viewer's content
//   - anything else with a title or message: academic notification
//     (generic category fallback for display grouping)
//   - anything else: KindIgnored
//
// A malformed frame returns an error; callers log and drop it.
func DecodeEvent(raw []byte) (Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Event{}, fmt.Errorf("malformed event frame: %w", err)
	}

	switch env.Type {
	case EventNewPost:
		var post Post
		if err := json.Unmarshal(env.Data, &post); err != nil {
			return Event{}, fmt.Errorf("malformed new_post data: %w", err)
		}
		return Event{Kind: KindNewPost, Type: env.Type, Post: &post}, nil

	case EventComment, EventUpvote:
		return Event{
			Kind:         KindNotification,
			Type:         env.Type,
			Notification: env.notification(CategorySocial),
		}, nil

	default:
		if env.Title == "" && env.Message == "" {
			return Event{Kind: KindIgnored, Type: env.Type}, nil
		}
		return Event{
			Kind:         KindNotification,
			Type:         env.Type,
			Notification: env.notification(CategoryAcademic),
		}, nil
	}
}

// notification builds an unread Notification from envelope fields. Live
// events carry no server-side notification id; the store assigns a local
// one on insert.
func (e *eventEnvelope) notification(category string) *Notification {
	return &Notification{
		Category:  category,
		Title:     e.Title,
		Message:   e.Message,
		Sender:    e.Sender,
		Read:      false,
		CreatedAt: time.Now(),
	}
}
