package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prrathnayake/conveyancers-marketplace/platform/httpx"
	"github.com/prrathnayake/conveyancers-marketplace/services/gateway-service/internal/proxy"
)

type healthResponse struct {
	Service string `json:"service"`
	Status  string `json:"status"`
}

// Route mounts an upstream under PathPrefix + Mount.
type Route struct {
	Mount    string
	Upstream http.Handler
}

type RouterOptions struct {
	ServiceName string
	APIKey      string
	Metrics     *httpx.Metrics
	Ready       func(context.Context) error
}

func NewRouter(routes []Route, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(httpx.RequestID, httpx.Recover, httpx.AccessLog(opts.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteSuccess(w, http.StatusOK, healthResponse{Service: opts.ServiceName, Status: "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if opts.Ready != nil {
			if err := opts.Ready(req.Context()); err != nil {
				httpx.WriteError(w, req, http.StatusServiceUnavailable, "not_ready", "upstreams unavailable")
				return
			}
		}
		httpx.WriteSuccess(w, http.StatusOK, healthResponse{Service: opts.ServiceName, Status: "ready"})
	})

	r.Group(func(r chi.Router) {
		r.Use(httpx.Authenticate(opts.APIKey, opts.Metrics))
		if opts.Metrics != nil {
			r.With(httpx.RequireRoles(opts.Metrics, "admin")).Handle("/metrics", opts.Metrics.Handler())
		}
		for _, route := range routes {
			r.Handle(proxy.PathPrefix+route.Mount, route.Upstream)
			r.Handle(proxy.PathPrefix+route.Mount+"/*", route.Upstream)
		}
	})
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(w, req, http.StatusNotFound, "route_not_found", "no upstream serves this path")
	})
	return r
}
