// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package reconcile

import (
	"github.com/loopin-app/loopctl/internal/logging"
	"github.com/loopin-app/loopctl/internal/models"
)

// BuildCommentTree assembles the server's flat comment list into a reply
// tree. Two passes: first index every comment by id with an empty reply
// list, then attach each comment to its parent or to the root set.
//
// A comment whose parent id points at a comment missing from the input is
// dropped. The server returns complete lists, so an orphan only appears in
// transient states and rendering it at the root would misplace it.
//
// The result is deterministic for a given input: roots and reply lists
// preserve the input order.
func BuildCommentTree(comments []models.Comment) []*models.Comment {
	nodes := make(map[int64]*models.Comment, len(comments))
	order := make([]*models.Comment, 0, len(comments))

	for i := range comments {
		c := comments[i]
		c.Replies = []*models.Comment{}
		node := &c
		nodes[c.ID] = node
		order = append(order, node)
	}

	roots := make([]*models.Comment, 0, len(comments))
	for _, node := range order {
		if node.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*node.ParentID]
		if !ok {
			logging.Debug().
				Int64("comment_id", node.ID).
				Int64("parent_id", *node.ParentID).
				Msg("[comments] dropping orphaned reply")
			continue
		}
		parent.Replies = append(parent.Replies, node)
	}

	return roots
}

// CountTree returns the total number of comments reachable from the roots.
func CountTree(roots []*models.Comment) int {
	n := 0
	for _, root := range roots {
		n += 1 + CountTree(root.Replies)
	}
	return n
}
