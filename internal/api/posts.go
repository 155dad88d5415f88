// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/loopin-app/loopctl/internal/models"
)

// ListPostsOptions shapes the feed query. The zero value lists the first
// page, all departments, no tag filter.
type ListPostsOptions struct {
	Skip       int
	Limit      int
	Department string // models.DepartmentAll or empty means unfiltered
	Tags       string
}

// ListPosts fetches a feed page.
func (c *Client) ListPosts(ctx context.Context, opts ListPostsOptions) ([]models.Post, error) {
	if opts.Limit <= 0 {
		opts.Limit = 10
	}

	query := url.Values{}
	query.Set("skip", strconv.Itoa(opts.Skip))
	query.Set("limit", strconv.Itoa(opts.Limit))
	if opts.Department != "" && opts.Department != models.DepartmentAll {
		query.Set("department", opts.Department)
	}
	if opts.Tags != "" {
		query.Set("tags", opts.Tags)
	}

	var posts []models.Post
	err := c.do(ctx, "list_posts", requestOpts{
		method: http.MethodGet,
		path:   "/posts/",
		query:  query,
		out:    &posts,
	})
	return posts, err
}

// CreatePost publishes a new post and returns the created record.
func (c *Client) CreatePost(ctx context.Context, post models.NewPost) (*models.Post, error) {
	if post.Type == "" {
		post.Type = "discussion"
	}

	var created models.Post
	err := c.do(ctx, "create_post", requestOpts{
		method:   http.MethodPost,
		path:     "/posts/",
		jsonBody: post,
		out:      &created,
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeletePost removes a post. Authors can delete their own posts; the
// elevated credential can delete any.
func (c *Client) DeletePost(ctx context.Context, postID int64) error {
	return c.do(ctx, "delete_post", requestOpts{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/posts/%d", postID),
	})
}

// GetPost fetches a single post by id. Used for targeted refresh after a
// mutation instead of refetching the whole feed.
func (c *Client) GetPost(ctx context.Context, postID int64) (*models.Post, error) {
	var post models.Post
	err := c.do(ctx, "get_post", requestOpts{
		method: http.MethodGet,
		path:   fmt.Sprintf("/posts/%d", postID),
		out:    &post,
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// PinPost pins a post for the given duration ("infinite" or a backend
// duration token). Requires the elevated credential.
func (c *Client) PinPost(ctx context.Context, postID int64, duration string) (*models.Post, error) {
	if duration == "" {
		duration = "infinite"
	}

	query := url.Values{}
	query.Set("duration", duration)

	var pinned models.Post
	err := c.do(ctx, "pin_post", requestOpts{
		method: http.MethodPut,
		path:   fmt.Sprintf("/posts/%d/pin", postID),
		query:  query,
		out:    &pinned,
	})
	if err != nil {
		return nil, err
	}
	return &pinned, nil
}

// UnpinPost clears a post's pin. Requires the elevated credential.
func (c *Client) UnpinPost(ctx context.Context, postID int64) (*models.Post, error) {
	var unpinned models.Post
	err := c.do(ctx, "unpin_post", requestOpts{
		method: http.MethodPut,
		path:   fmt.Sprintf("/posts/%d/unpin", postID),
		out:    &unpinned,
	})
	if err != nil {
		return nil, err
	}
	return &unpinned, nil
}

// ShareResult is the backend's share-count acknowledgement.
type ShareResult struct {
	ShareCount int    `json:"share_count"`
	Message    string `json:"message,omitempty"`
}

// SharePost records one share of a post. Telemetry only: callers treat
// failure as non-critical.
func (c *Client) SharePost(ctx context.Context, postID int64) (*ShareResult, error) {
	var result ShareResult
	err := c.do(ctx, "share_post", requestOpts{
		method: http.MethodPatch,
		path:   fmt.Sprintf("/posts/%d/share", postID),
		out:    &result,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
