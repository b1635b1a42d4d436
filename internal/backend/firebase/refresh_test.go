package firebase_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"todowork/internal/backend/firebase"
)

func newTokenServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("bad form: %v", err)
		}
		if got := r.URL.Query().Get("key"); got != "web-key" {
			t.Errorf("expected api key in query, got %q", got)
		}
		if r.PostForm.Get("grant_type") != "refresh_token" || r.PostForm.Get("refresh_token") != "refresh-1" {
			t.Errorf("unexpected form %v", r.PostForm)
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": status, "message": "INVALID_REFRESH_TOKEN"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "access",
			"expires_in":    "3600",
			"token_type":    "Bearer",
			"refresh_token": "refresh-2",
			"id_token":      "id-2",
			"user_id":       "uid-1",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRefresher_ExchangesRefreshToken(t *testing.T) {
	srv := newTokenServer(t, http.StatusOK)
	r := firebase.NewRefresher("web-key", srv.URL, srv.Client())

	idToken, refreshToken, err := r.Refresh(context.Background(), "refresh-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idToken != "id-2" || refreshToken != "refresh-2" {
		t.Errorf("unexpected tokens %q %q", idToken, refreshToken)
	}
}

func TestRefresher_ClassifiesFailures(t *testing.T) {
	for _, tc := range []struct {
		status   int
		rejected bool
	}{
		{http.StatusBadRequest, true},
		{http.StatusServiceUnavailable, false},
	} {
		srv := newTokenServer(t, tc.status)
		r := firebase.NewRefresher("web-key", srv.URL, srv.Client())

		_, _, err := r.Refresh(context.Background(), "refresh-1")
		if err == nil {
			t.Fatalf("%d: expected error", tc.status)
		}
		if got := errors.Is(err, firebase.ErrTokenRejected); got != tc.rejected {
			t.Errorf("%d: rejected = %v, want %v (%v)", tc.status, got, tc.rejected, err)
		}
	}
}
