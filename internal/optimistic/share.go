// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package optimistic

import (
	"context"

	"github.com/loopin-app/loopctl/internal/api"
	"github.com/loopin-app/loopctl/internal/logging"
)

// shareCaller is the slice of the API client a share needs.
type shareCaller interface {
	SharePost(ctx context.Context, postID int64) (*api.ShareResult, error)
}

// SharePost records a share. The local count goes up immediately and stays
// up even when the server call fails: sharing surfaces content elsewhere, so
// a stale count is harmless and a visible rollback would only confuse. On
// success the server's count replaces the guess.
func SharePost(
	ctx context.Context,
	client shareCaller,
	postID int64,
	read func() (int, bool),
	write func(int),
) {
	cur, ok := read()
	if !ok {
		return
	}
	write(cur + 1)

	result, err := client.SharePost(ctx, postID)
	if err != nil {
		logging.Warn().Err(err).Int64("post_id", postID).Msg("[share] server call failed, keeping local count")
		return
	}
	if result.ShareCount > 0 {
		write(result.ShareCount)
	}
}
