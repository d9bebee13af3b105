package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prrathnayake/conveyancers-marketplace/platform/httpx"
	"github.com/prrathnayake/conveyancers-marketplace/services/jobs-service/internal/contracts"
)

const (
	roleAdmin        = "admin"
	roleFinanceAdmin = "finance_admin"
	roleConveyancer  = "conveyancer"
	roleBuyer        = "buyer"
	roleSeller       = "seller"
)

type RouterOptions struct {
	ServiceName string
	APIKey      string
	Metrics     *httpx.Metrics
	Ready       func(context.Context) error
}

func NewRouter(handler *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(httpx.RequestID, httpx.Recover, httpx.AccessLog(opts.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteSuccess(w, http.StatusOK, contracts.HealthResponse{Service: opts.ServiceName, Status: "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if opts.Ready != nil {
			if err := opts.Ready(req.Context()); err != nil {
				httpx.WriteError(w, req, http.StatusServiceUnavailable, "not_ready", "dependencies unavailable")
				return
			}
		}
		httpx.WriteSuccess(w, http.StatusOK, contracts.HealthResponse{Service: opts.ServiceName, Status: "ready"})
	})

	r.Group(func(r chi.Router) {
		r.Use(httpx.Authenticate(opts.APIKey, opts.Metrics))
		guard := func(roles ...string) func(http.Handler) http.Handler {
			return httpx.RequireRoles(opts.Metrics, roles...)
		}
		parties := guard(roleBuyer, roleSeller, roleConveyancer, roleFinanceAdmin, roleAdmin)

		if opts.Metrics != nil {
			r.With(guard(roleAdmin)).Handle("/metrics", opts.Metrics.Handler())
		}

		r.Route("/jobs", func(r chi.Router) {
			r.With(guard(roleBuyer, roleSeller, roleConveyancer, roleAdmin)).Post("/", handler.createJob)
			r.With(parties).Get("/", handler.listJobs)
			r.With(parties).Get("/{id}", handler.getJob)
			r.With(parties).Get("/{id}/contact", handler.getContact)
			r.With(parties).Post("/{id}/contact/unlock", handler.unlockContact)
			r.With(parties).Post("/{id}/chat", handler.postMessage)
			r.With(parties).Get("/{id}/chat", handler.listMessages)
			r.With(guard(roleConveyancer, roleAdmin)).Post("/{id}/milestones", handler.addMilestone)
			r.With(parties).Get("/{id}/milestones", handler.listMilestones)
			r.With(guard(roleAdmin, roleFinanceAdmin)).Get("/{id}/compliance", handler.complianceFlags)
		})
	})
	return r
}
