// Loopctl - Loop.in Campus Feed Mirror
// Copyright 2026 Loop.in Developers
// SPDX-License-Identifier: MIT
// https://github.com/loopin-app/loopctl

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/loopin-app/loopctl/internal/models"
)

// fakeCreds is a scriptable CredentialSource.
type fakeCreds struct {
	token    string
	elevated bool
	signedIn bool
	err      error
}

func (f *fakeCreds) AuthToken(context.Context) (string, bool, error) {
	return f.token, f.elevated, f.err
}

func (f *fakeCreds) SignedIn() bool { return f.signedIn }

func newTestClient(t *testing.T, handler http.HandlerFunc, creds CredentialSource, onInvalid func(string)) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:          srv.URL,
		Credentials:      creds,
		OnSessionInvalid: onInvalid,
	})
}

func checkNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClientAttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotReqID, gotAccept string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"id": 1, "email": "a@x.edu", "role": "student"}`))
	}, &fakeCreds{token: "tok-provider", signedIn: true}, nil)

	user, err := client.CurrentUser(context.Background())
	checkNoError(t, err)

	if gotAuth != "Bearer tok-provider" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
	if gotReqID == "" {
		t.Error("expected a request id header")
	}
	if gotAccept != "application/json" {
		t.Errorf("expected JSON accept header, got %q", gotAccept)
	}
	if user.ID != 1 || user.Role != models.RoleStudent {
		t.Errorf("unexpected decoded user: %+v", user)
	}
}

func TestClientSendsAnonymousWhenNoCredential(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}, &fakeCreds{err: errors.New("no session")}, nil)

	_, err := client.ListPosts(context.Background(), ListPostsOptions{})
	checkNoError(t, err)

	if gotAuth != "" {
		t.Errorf("expected anonymous request, got auth %q", gotAuth)
	}
}

func TestClient401WithoutSessionSignalsExpiry(t *testing.T) {
	var signaled []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, &fakeCreds{token: "tok-stale", signedIn: false}, func(reason string) {
		signaled = append(signaled, reason)
	})

	_, err := client.CurrentUser(context.Background())

	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if len(signaled) != 1 || signaled[0] != ReasonSessionExpired {
		t.Errorf("expected one %q signal, got %v", ReasonSessionExpired, signaled)
	}
}

func TestClient401WithSessionIsTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, &fakeCreds{token: "tok-mid-refresh", signedIn: true}, func(string) {
		t.Error("session-invalidation signal must not fire while signed in")
	})

	_, err := client.CurrentUser(context.Background())

	if errors.Is(err, ErrSessionExpired) {
		t.Fatal("401 with a live session must not be normalized to expiry")
	}
	if !IsUnauthorized(err) {
		t.Errorf("expected plain 401 error, got %v", err)
	}
}

func TestClient401ElevatedPropagatesUntouched(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, &fakeCreds{token: "tok-admin", elevated: true, signedIn: false}, func(string) {
		t.Error("session-invalidation signal must not fire for the elevated credential")
	})

	_, err := client.CurrentUser(context.Background())

	if errors.Is(err, ErrSessionExpired) {
		t.Fatal("elevated 401 must not be normalized to expiry")
	}
	if !IsUnauthorized(err) {
		t.Errorf("expected plain 401 error, got %v", err)
	}
}

func TestClientErrorCarriesStatusAndBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail": "not yours to delete"}`))
	}, &fakeCreds{token: "tok", signedIn: true}, nil)

	err := client.DeletePost(context.Background(), 7)

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Status != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", apiErr.Status)
	}
	if apiErr.Body == "" {
		t.Error("expected error body captured")
	}
	if !IsStatus(err, http.StatusForbidden) {
		t.Error("IsStatus must match through wrapping")
	}
}

func TestListPostsQuery(t *testing.T) {
	tests := []struct {
		name           string
		opts           ListPostsOptions
		wantDept       string
		wantDeptAbsent bool
		wantLimit      string
	}{
		{
			name:           "defaults",
			opts:           ListPostsOptions{},
			wantDeptAbsent: true,
			wantLimit:      "10",
		},
		{
			name:           "ALL department is unfiltered",
			opts:           ListPostsOptions{Department: models.DepartmentAll, Limit: 5},
			wantDeptAbsent: true,
			wantLimit:      "5",
		},
		{
			name:      "specific department",
			opts:      ListPostsOptions{Department: "CSE", Limit: 5},
			wantDept:  "CSE",
			wantLimit: "5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery map[string][]string
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.Query()
				w.Write([]byte(`[]`))
			}, &fakeCreds{token: "tok", signedIn: true}, nil)

			_, err := client.ListPosts(context.Background(), tt.opts)
			checkNoError(t, err)

			if tt.wantDeptAbsent {
				if _, present := gotQuery["department"]; present {
					t.Error("expected no department filter")
				}
			} else if got := gotQuery["department"]; len(got) != 1 || got[0] != tt.wantDept {
				t.Errorf("expected department %q, got %v", tt.wantDept, got)
			}
			if got := gotQuery["limit"]; len(got) != 1 || got[0] != tt.wantLimit {
				t.Errorf("expected limit %q, got %v", tt.wantLimit, got)
			}
		})
	}
}

func TestLoginLocalSendsForm(t *testing.T) {
	var gotContentType, gotUsername, gotPassword string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		r.ParseForm()
		gotUsername = r.PostFormValue("username")
		gotPassword = r.PostFormValue("password")
		w.Write([]byte(`{"access_token": "tok-elevated", "token_type": "bearer"}`))
	}, &fakeCreds{}, nil)

	result, err := client.LoginLocal(context.Background(), "admin@x.edu", "hunter2")
	checkNoError(t, err)

	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("expected form content type, got %q", gotContentType)
	}
	if gotUsername != "admin@x.edu" || gotPassword != "hunter2" {
		t.Errorf("unexpected form fields: %q / %q", gotUsername, gotPassword)
	}
	if result.AccessToken != "tok-elevated" {
		t.Errorf("unexpected login result: %+v", result)
	}
}

func TestCastVoteRejectsInvalidDirection(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, &fakeCreds{token: "tok", signedIn: true}, nil)

	if _, err := client.VotePost(context.Background(), 1, models.VoteNone); err == nil {
		t.Error("expected error for direction 0")
	}
	if called {
		t.Error("invalid direction must not reach the backend")
	}
}

func TestVotePostDecodesTallies(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/votes/" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"status": "created", "upvotes": 12, "downvotes": 3}`))
	}, &fakeCreds{token: "tok", signedIn: true}, nil)

	result, err := client.VotePost(context.Background(), 1, models.VoteUp)
	checkNoError(t, err)

	if result.Upvotes != 12 || result.Downvotes != 3 || result.Status != "created" {
		t.Errorf("unexpected vote result: %+v", result)
	}
}

func TestToggleReactionRejectsInvalidTarget(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid target must not reach the backend")
	}, &fakeCreds{token: "tok", signedIn: true}, nil)

	if _, err := client.ToggleReaction(context.Background(), "reel", 1, "🔥"); err == nil {
		t.Error("expected error for unknown target type")
	}
}

func TestCampusNewsDegradesToEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, &fakeCreds{token: "tok", signedIn: true}, nil)

	if news := client.CampusNews(context.Background()); news != nil {
		t.Errorf("expected nil news on backend failure, got %v", news)
	}
}
