package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/platform/httpx"
)

func TestStripPrefix(t *testing.T) {
	cases := map[string]string{
		"/api/payments/hold": "/payments/hold",
		"/api/jobs":          "/jobs",
		"/api":               "/",
		"/payments":          "/payments",
	}
	for in, want := range cases {
		if got := StripPrefix(in); got != want {
			t.Fatalf("StripPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewUpstreamRejectsBadURL(t *testing.T) {
	if _, err := NewUpstream(UpstreamConfig{Name: "payments", BaseURL: "not a url"}, nil); err == nil {
		t.Fatalf("expected invalid url error")
	}
}

func TestUpstreamForwardsAndRewritesHeaders(t *testing.T) {
	var got *http.Request
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.WriteHeader(http.StatusTeapot)
	}))
	defer backend.Close()

	up, err := NewUpstream(UpstreamConfig{Name: "payments", BaseURL: backend.URL, APIKey: "internal-key"}, nil)
	if err != nil {
		t.Fatalf("NewUpstream: %v", err)
	}
	handler := httpx.RequestID(up)
	req := httptest.NewRequest(http.MethodGet, "/api/payments/hold?job_id=j1", nil)
	req.Header.Set(httpx.HeaderAPIKey, "client-key")
	req.Header.Set(httpx.HeaderActorRole, "buyer")
	req.Header.Set(httpx.HeaderRequestID, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
	if got.URL.Path != "/payments/hold" || got.URL.RawQuery != "job_id=j1" {
		t.Fatalf("forwarded url = %s", got.URL.String())
	}
	if got.Header.Get(httpx.HeaderAPIKey) != "internal-key" {
		t.Fatalf("api key not replaced: %q", got.Header.Get(httpx.HeaderAPIKey))
	}
	if got.Header.Get(httpx.HeaderActorRole) != "buyer" || got.Header.Get(httpx.HeaderRequestID) != "req-123" {
		t.Fatalf("headers not forwarded: %v", got.Header)
	}
}

func TestUpstreamUnavailable(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	url := backend.URL
	backend.Close()

	up, err := NewUpstream(UpstreamConfig{Name: "jobs", BaseURL: url, Timeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("NewUpstream: %v", err)
	}
	rec := httptest.NewRecorder()
	up.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "jobs_unavailable") {
		t.Fatalf("expected jobs_unavailable, got %d %s", rec.Code, rec.Body.String())
	}
	if err := up.Ping(context.Background()); err == nil {
		t.Fatalf("ping should fail for a closed upstream")
	}
}

func TestPing(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()
	up, _ := NewUpstream(UpstreamConfig{Name: "identity", BaseURL: backend.URL}, nil)
	if err := up.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
