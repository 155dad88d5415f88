// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package models

import "time"

// User is the backend profile record for a signed-in account.
// The identity provider owns authentication; this record is what
// the Loop.in backend knows about the account.
type User struct {
	ID               int64      `json:"id"`
	Email            string     `json:"email"`
	Username         string     `json:"username,omitempty"`
	FullName         string     `json:"full_name,omitempty"`
	EnrollmentNumber string     `json:"enrollment_number,omitempty"`
	Department       string     `json:"department,omitempty"`
	Role             string     `json:"role"`
	Bio              string     `json:"bio,omitempty"`
	ProfilePhotoURL  string     `json:"profile_photo_url,omitempty"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
}

// Roles recognized by the backend.
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
	RoleAdmin   = "admin"
)

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// DisplayName returns the best available human-readable name.
func (u *User) DisplayName() string {
	if u == nil {
		return "Anonymous"
	}
	if u.FullName != "" {
		return u.FullName
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// ProfileUpdate is the payload for editing the current user's profile.
// Zero-valued fields are omitted so the backend treats them as unchanged.
type ProfileUpdate struct {
	FullName        string `json:"full_name,omitempty"`
	Username        string `json:"username,omitempty"`
	Bio             string `json:"bio,omitempty"`
	Department      string `json:"department,omitempty"`
	ProfilePhotoURL string `json:"profile_photo_url,omitempty"`
}
