// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

// Package metrics provides Prometheus instrumentation for loopctl:
// API request outcomes, live channel activity, reconciler merges, and
// optimistic mutation rollbacks. Exposed on the status endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API client metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loopctl_api_request_duration_seconds",
			Help:    "Duration of Loop.in API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	APIRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loopctl_api_request_errors_total",
			Help: "Total number of failed Loop.in API requests",
		},
		[]string{"operation", "status"},
	)

	// Live channel metrics
	LiveEventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loopctl_live_events_received_total",
			Help: "Total number of decoded live events by envelope type",
		},
		[]string{"type"},
	)

	LiveFramesMalformed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loopctl_live_frames_malformed_total",
			Help: "Total number of live frames dropped because they failed to parse",
		},
	)

	LiveConnectionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loopctl_live_connection_state",
			Help: "Live channel state (0=disconnected, 1=connecting, 2=connected)",
		},
	)

	// Reconciler metrics
	FeedMerges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loopctl_feed_merges_total",
			Help: "Feed merge outcomes for live new_post events",
		},
		[]string{"result"}, // "inserted", "duplicate"
	)

	NotificationsMerged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loopctl_notifications_merged_total",
			Help: "Total number of live notifications prepended to the local list",
		},
	)

	// Optimistic mutation metrics
	OptimisticRollbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loopctl_optimistic_rollbacks_total",
			Help: "Total number of optimistic mutations reverted after a failed network call",
		},
		[]string{"mutation"}, // "vote_post", "vote_comment", "toggle_reaction"
	)

	// Circuit breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "loopctl_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"breaker"},
	)
)
