package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prrathnayake/conveyancers-marketplace/platform/httpx"
	"github.com/prrathnayake/conveyancers-marketplace/services/gateway-service/internal/proxy"
)

const testAPIKey = "client-key"

func newGateway(t *testing.T) http.Handler {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	t.Cleanup(backend.Close)
	up, err := proxy.NewUpstream(proxy.UpstreamConfig{Name: "payments", BaseURL: backend.URL, APIKey: "internal"}, nil)
	if err != nil {
		t.Fatalf("NewUpstream: %v", err)
	}
	return NewRouter([]Route{{Mount: "/payments", Upstream: up}}, RouterOptions{
		ServiceName: "gateway-service",
		APIKey:      testAPIKey,
		Metrics:     httpx.NewMetrics("gateway-service"),
	})
}

func serve(h http.Handler, path, key, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if key != "" {
		req.Header.Set(httpx.HeaderAPIKey, key)
	}
	if role != "" {
		req.Header.Set(httpx.HeaderActorRole, role)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGatewayRequiresClientKey(t *testing.T) {
	h := newGateway(t)
	if rec := serve(h, "/api/payments/hold", "", "buyer"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec := serve(h, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz should be public, got %d", rec.Code)
	}
}

func TestGatewayProxiesWithPrefixStripped(t *testing.T) {
	h := newGateway(t)
	rec := serve(h, "/api/payments/hold/pay_1", testAPIKey, "buyer")
	if rec.Code != http.StatusOK || rec.Body.String() != "/payments/hold/pay_1" {
		t.Fatalf("proxied = %d %q", rec.Code, rec.Body.String())
	}
	rec = serve(h, "/api/payments", testAPIKey, "buyer")
	if rec.Body.String() != "/payments" {
		t.Fatalf("mount root = %q", rec.Body.String())
	}
}

func TestGatewayUnknownRouteAndMetrics(t *testing.T) {
	h := newGateway(t)
	rec := serve(h, "/api/billing/x", testAPIKey, "buyer")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "route_not_found") {
		t.Fatalf("unknown route = %d %s", rec.Code, rec.Body.String())
	}
	if rec := serve(h, "/metrics", testAPIKey, "buyer"); rec.Code != http.StatusForbidden {
		t.Fatalf("metrics for buyer = %d", rec.Code)
	}
	if rec := serve(h, "/metrics", testAPIKey, "admin"); rec.Code != http.StatusOK {
		t.Fatalf("metrics for admin = %d", rec.Code)
	}
}
