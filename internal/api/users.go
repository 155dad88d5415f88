// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/loopin-app/loopctl/internal/models"
)

// CurrentUser fetches the backend profile for the current credential. The
// backend lazily creates the profile on first sight of a valid token.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	err := c.do(ctx, "current_user", requestOpts{
		method: http.MethodGet,
		path:   "/auth/me",
		out:    &user,
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile edits the current user's profile and returns the updated
// record. Callers follow up with a session Refresh.
func (c *Client) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	var user models.User
	err := c.do(ctx, "update_profile", requestOpts{
		method:   http.MethodPut,
		path:     "/users/me",
		jsonBody: update,
		out:      &user,
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// LoginResult is the backend's response to a local (admin) login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// LoginLocal exchanges email and password for an elevated bearer token via
// the backend's own login endpoint, bypassing the identity provider. The
// caller persists the token through the session's AdminStore.
func (c *Client) LoginLocal(ctx context.Context, email, password string) (*LoginResult, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var result LoginResult
	err := c.do(ctx, "login_local", requestOpts{
		method:   http.MethodPost,
		path:     "/auth/login",
		formBody: form,
		out:      &result,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// NewsItem is one campus news entry for the announcements widget.
type NewsItem struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
	Type  string `json:"type"` // Academic, Event, Notice
}

// CampusNews fetches the campus news widget feed. A failed fetch degrades
// to an empty list; news is decorative, not load-bearing.
func (c *Client) CampusNews(ctx context.Context) []NewsItem {
	var news []NewsItem
	err := c.do(ctx, "campus_news", requestOpts{
		method: http.MethodGet,
		path:   "/news/",
		out:    &news,
	})
	if err != nil {
		return nil
	}
	return news
}
