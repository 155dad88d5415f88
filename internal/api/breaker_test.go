// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

func fakeResponse(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader("")),
	}
}

func TestBreakerReturnsServerErrorResponse(t *testing.T) {
	b := newBreaker("test-5xx")

	resp, err := b.execute(func() (*http.Response, error) {
		return fakeResponse(http.StatusBadGateway), nil
	})
	if err != nil {
		t.Fatalf("expected usable response despite counted failure, got %v", err)
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502 passed through, got %d", resp.StatusCode)
	}
}

func TestBreakerPropagatesTransportError(t *testing.T) {
	b := newBreaker("test-transport")
	wantErr := errors.New("connection refused")

	resp, err := b.execute(func() (*http.Response, error) {
		return nil, wantErr
	})
	if resp != nil {
		t.Error("expected no response on transport failure")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("expected transport error passed through, got %v", err)
	}
}

func TestBreakerOpensUnderSustainedFailure(t *testing.T) {
	b := newBreaker("test-open")

	for i := 0; i < 10; i++ {
		b.execute(func() (*http.Response, error) {
			return nil, errors.New("backend down")
		})
	}

	_, err := b.execute(func() (*http.Response, error) {
		t.Error("open circuit must not execute the request")
		return fakeResponse(http.StatusOK), nil
	})
	if err == nil {
		t.Fatal("expected open-circuit error")
	}
}

func TestBreakerStaysClosedOn4xx(t *testing.T) {
	b := newBreaker("test-4xx")

	for i := 0; i < 20; i++ {
		resp, err := b.execute(func() (*http.Response, error) {
			return fakeResponse(http.StatusNotFound), nil
		})
		if err != nil || resp.StatusCode != http.StatusNotFound {
			t.Fatalf("unexpected result on iteration %d: %v", i, err)
		}
	}

	resp, err := b.execute(func() (*http.Response, error) {
		return fakeResponse(http.StatusOK), nil
	})
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Error("circuit must stay closed through client errors")
	}
}
