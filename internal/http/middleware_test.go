package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		code   string
	}{
		{"", "", "missing_token"},
		{"Bearer abc.def", "abc.def", ""},
		{"bearer  abc.def ", "abc.def", ""},
		{"Basic abc", "", "invalid_token"},
		{"Bearer ", "", "invalid_token"},
		{"Bearer", "", "invalid_token"},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		token, appErr := bearerToken(r)
		if tc.code != "" {
			if appErr == nil || appErr.Code != tc.code {
				t.Fatalf("%q: expected %s, got %v", tc.header, tc.code, appErr)
			}
			continue
		}
		if appErr != nil || token != tc.token {
			t.Fatalf("%q: expected token %q, got %q (%v)", tc.header, tc.token, token, appErr)
		}
	}
}

func TestVisitorLimiterForgetsIdleIPs(t *testing.T) {
	l := newVisitorLimiter(rate.Every(time.Hour), 1, 10*time.Minute)
	start := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	if !l.allow("10.0.0.1", start) {
		t.Fatalf("first request should pass")
	}
	if l.allow("10.0.0.1", start.Add(time.Second)) {
		t.Fatalf("second request inside the window should be limited")
	}
	if !l.allow("10.0.0.2", start.Add(time.Second)) {
		t.Fatalf("other IPs have their own bucket")
	}

	later := start.Add(11 * time.Minute)
	l.allow("10.0.0.3", later)
	if _, ok := l.visitors["10.0.0.1"]; ok {
		t.Fatalf("idle visitor should have been swept")
	}
	if len(l.visitors) != 1 {
		t.Fatalf("expected only the fresh visitor, got %d", len(l.visitors))
	}
}

func TestCORSPreflight(t *testing.T) {
	reached := false
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	r := httptest.NewRequest(http.MethodOptions, "/api/v1/questions", nil)
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusNoContent || reached {
		t.Fatalf("preflight should be answered by the middleware, got %d reached=%v", rec.Code, reached)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET,POST,PATCH,DELETE,OPTIONS" {
		t.Fatalf("unexpected allowed methods %q", got)
	}
}
