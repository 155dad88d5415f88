// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package api

import (
	"fmt"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/loopin-app/loopctl/internal/logging"
	"github.com/loopin-app/loopctl/internal/metrics"
)

// breaker shields the backend from request storms when it is down or slow.
// Transport failures and 5xx responses count against the circuit; 4xx
// responses are the caller's problem and never trip it.
type breaker struct {
	cb *gobreaker.CircuitBreaker[*http.Response]
}

func newBreaker(name string) *breaker {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		// Open after a 60% failure rate across at least 10 requests.
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("[api] circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToGauge(to))
		},
	})

	return &breaker{cb: cb}
}

// execute runs fn through the circuit. The response is returned even when
// a 5xx counted as a failure, so callers can still read the body.
func (b *breaker) execute(fn func() (*http.Response, error)) (*http.Response, error) {
	resp, err := b.cb.Execute(func() (*http.Response, error) {
		resp, err := fn()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, fmt.Errorf("server error: status %d", resp.StatusCode)
		}
		return resp, nil
	})
	if resp != nil {
		// 5xx path: the response is usable, the failure was still counted.
		return resp, nil
	}
	return nil, err
}

func stateToString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToGauge(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
