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

// ListComments fetches the flat comment list for a post. Tree building is
// the reconciler's job, not the transport's.
func (c *Client) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := c.do(ctx, "list_comments", requestOpts{
		method: http.MethodGet,
		path:   fmt.Sprintf("/posts/%d/comments/", postID),
		out:    &comments,
	})
	return comments, err
}

// newComment is the create-comment payload.
type newComment struct {
	Content  string `json:"content"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// CreateComment posts a comment. parentID nil creates a root comment,
// otherwise a reply to the given comment.
func (c *Client) CreateComment(ctx context.Context, postID int64, content string, parentID *int64) (*models.Comment, error) {
	var created models.Comment
	err := c.do(ctx, "create_comment", requestOpts{
		method:   http.MethodPost,
		path:     fmt.Sprintf("/posts/%d/comments/", postID),
		jsonBody: newComment{Content: content, ParentID: parentID},
		out:      &created,
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID int64) error {
	return c.do(ctx, "delete_comment", requestOpts{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/posts/%d/comments/%d", postID, commentID),
	})
}
