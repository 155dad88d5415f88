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

// ListNotifications fetches a page of the viewer's notification history,
// newest first.
func (c *Client) ListNotifications(ctx context.Context, skip, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 20
	}

	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))

	var notifications []models.Notification
	err := c.do(ctx, "list_notifications", requestOpts{
		method: http.MethodGet,
		path:   "/notifications/",
		query:  query,
		out:    &notifications,
	})
	return notifications, err
}

// MarkNotificationRead sets the read flag on one notification.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID int64) error {
	return c.do(ctx, "mark_notification_read", requestOpts{
		method: http.MethodPut,
		path:   fmt.Sprintf("/notifications/%d/read", notificationID),
	})
}

// MarkAllNotificationsRead sets the read flag on every notification.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, "mark_all_notifications_read", requestOpts{
		method: http.MethodPut,
		path:   "/notifications/read-all",
	})
}
