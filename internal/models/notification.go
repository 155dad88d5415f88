// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package models

import "time"

// Notification categories used for display grouping. Social covers
// peer activity (comments, votes); academic covers everything else
// (announcements, deadlines).
const (
	CategorySocial   = "social"
	CategoryAcademic = "academic"
)

// Sender identifies who triggered a notification, when known.
type Sender struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ProfilePhoto string `json:"profile_photo,omitempty"`
}

// Notification is one entry in the notification list. Entries are created
// from the initial fetch or from a live event, mutated only by the read
// flag, and never deleted client-side.
type Notification struct {
	ID            int64     `json:"id"`
	Category      string    `json:"type"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	ReferenceID   *int64    `json:"reference_id,omitempty"`
	ReferenceType string    `json:"reference_type,omitempty"`
	Read          bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
	Sender        *Sender   `json:"sender,omitempty"`
}
