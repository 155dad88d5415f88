// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package optimistic

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/loopin-app/loopctl/internal/models"
)

func TestNextReactions(t *testing.T) {
	tests := []struct {
		name  string
		cur   []models.Reaction
		emoji string
		want  []models.Reaction
	}{
		{
			name:  "absent emoji appended",
			cur:   []models.Reaction{{Emoji: "👍", Count: 2}},
			emoji: "🔥",
			want: []models.Reaction{
				{Emoji: "👍", Count: 2},
				{Emoji: "🔥", Count: 1, UserReacted: true},
			},
		},
		{
			name:  "present emoji incremented",
			cur:   []models.Reaction{{Emoji: "👍", Count: 2}},
			emoji: "👍",
			want:  []models.Reaction{{Emoji: "👍", Count: 3, UserReacted: true}},
		},
		{
			name:  "own reaction decremented",
			cur:   []models.Reaction{{Emoji: "👍", Count: 2, UserReacted: true}},
			emoji: "👍",
			want:  []models.Reaction{{Emoji: "👍", Count: 1}},
		},
		{
			name:  "own last reaction pruned",
			cur:   []models.Reaction{{Emoji: "👍", Count: 1, UserReacted: true}},
			emoji: "👍",
			want:  []models.Reaction{},
		},
		{
			name:  "first reaction on empty list",
			cur:   nil,
			emoji: "🎉",
			want:  []models.Reaction{{Emoji: "🎉", Count: 1, UserReacted: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextReactions(tt.cur, tt.emoji)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestNextReactionsToggleRoundTrip(t *testing.T) {
	cur := []models.Reaction{{Emoji: "👍", Count: 3}}
	after := NextReactions(NextReactions(cur, "🔥"), "🔥")
	if !reflect.DeepEqual(after, cur) {
		t.Errorf("toggle on then off must restore the list, got %+v", after)
	}
}

type fakeReactionCaller struct {
	result []models.Reaction
	err    error
}

func (f *fakeReactionCaller) ToggleReaction(ctx context.Context, targetType string, targetID int64, emoji string) ([]models.Reaction, error) {
	return f.result, f.err
}

func TestToggleReactionAdoptsServerList(t *testing.T) {
	local := []models.Reaction{{Emoji: "👍", Count: 1}}
	server := []models.Reaction{
		{Emoji: "👍", Count: 1},
		{Emoji: "🔥", Count: 5, UserReacted: true},
	}
	caller := &fakeReactionCaller{result: server}

	err := ToggleReaction(context.Background(), caller, models.TargetPost, 1, "🔥",
		func() ([]models.Reaction, bool) { return local, true },
		func(r []models.Reaction) { local = r },
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(local, server) {
		t.Errorf("expected server list adopted, got %+v", local)
	}
}

func TestToggleReactionRevertsOnFailure(t *testing.T) {
	before := []models.Reaction{{Emoji: "👍", Count: 2, UserReacted: true}}
	local := append([]models.Reaction{}, before...)
	caller := &fakeReactionCaller{err: errors.New("backend down")}

	err := ToggleReaction(context.Background(), caller, models.TargetComment, 9, "👍",
		func() ([]models.Reaction, bool) { return local, true },
		func(r []models.Reaction) { local = r },
	)
	if err == nil {
		t.Fatal("expected the server error to surface")
	}
	if !reflect.DeepEqual(local, before) {
		t.Errorf("expected exact revert to %+v, got %+v", before, local)
	}
}
