// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

/*
mutation.go - Optimistic Mutation Contract

Every optimistic write follows the same shape: snapshot the affected local
state, apply the predicted result immediately, invoke the server call, then
either reconcile with the authoritative response or restore the snapshot
exactly. The snapshot is taken by value before the apply step, so a revert
cannot observe the predicted state.
*/

package optimistic

import (
	"context"

	"github.com/loopin-app/loopctl/internal/logging"
	"github.com/loopin-app/loopctl/internal/metrics"
)

// Mutation describes one optimistic write over local state S with server
// response R.
type Mutation[S, R any] struct {
	// Name labels the mutation in logs and metrics.
	Name string

	// Snapshot captures the current local state by value.
	Snapshot func() S

	// Predict computes the expected post-mutation state from the snapshot.
	Predict func(S) S

	// Apply installs a state, both for the optimistic step and the revert.
	Apply func(S)

	// Invoke performs the server call.
	Invoke func(ctx context.Context) (R, error)

	// Reconcile folds the authoritative response into local state. Nil means
	// the predicted state stands.
	Reconcile func(R)
}

// Run executes the mutation. On failure the snapshot is restored and the
// server error returned to the caller.
func Run[S, R any](ctx context.Context, m Mutation[S, R]) error {
	before := m.Snapshot()
	m.Apply(m.Predict(before))

	resp, err := m.Invoke(ctx)
	if err != nil {
		metrics.OptimisticRollbacks.WithLabelValues(m.Name).Inc()
		logging.Warn().Err(err).Str("mutation", m.Name).Msg("[optimistic] reverting failed mutation")
		m.Apply(before)
		return err
	}

	if m.Reconcile != nil {
		m.Reconcile(resp)
	}
	return nil
}
