package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prrathnayake/conveyancers-marketplace/platform/httpx"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/contracts"
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
	// Ready reports whether backing stores are reachable. Nil means always ready.
	Ready func(context.Context) error
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

		if opts.Metrics != nil {
			r.With(guard(roleAdmin)).Handle("/metrics", opts.Metrics.Handler())
		}

		r.Route("/payments", func(r chi.Router) {
			r.With(guard(roleConveyancer, roleBuyer, roleFinanceAdmin)).Post("/hold", handler.createHold)
			r.With(guard(roleConveyancer, roleBuyer, roleSeller, roleFinanceAdmin)).Get("/hold", handler.listHolds)
			r.With(guard(roleConveyancer, roleBuyer, roleSeller, roleFinanceAdmin)).Get("/hold/{id}", handler.getHold)
			r.With(guard(roleConveyancer, roleFinanceAdmin)).Post("/hold/{id}/release", handler.releaseHold)
			r.With(guard(roleFinanceAdmin)).Post("/hold/{id}/refund", handler.refundHold)
			r.With(guard(roleFinanceAdmin)).Post("/hold/{id}/payout", handler.recordPayout)
			r.With(guard(roleFinanceAdmin, roleConveyancer)).Get("/hold/{id}/payout", handler.getPayout)

			r.With(guard(roleBuyer, roleConveyancer, roleFinanceAdmin)).Post("/checkout", handler.checkout)
			r.With(guard(roleBuyer, roleConveyancer, roleFinanceAdmin)).Get("/checkout", handler.listCheckouts)
			r.With(guard(roleBuyer, roleConveyancer, roleFinanceAdmin)).Get("/checkout/{id}", handler.getCheckout)

			r.Get("/loyalty/schedule", handler.loyaltySchedule)
			r.Get("/loyalty/{account_id}", handler.loyaltyStatus)

			r.With(guard(roleFinanceAdmin, roleAdmin)).Get("/metrics", handler.insights)

			r.With(guard(roleFinanceAdmin, roleAdmin)).Get("/invoices/summary", handler.invoiceSummary)
			r.With(guard(roleConveyancer, roleFinanceAdmin)).Post("/invoices", handler.createInvoice)
			r.With(guard(roleConveyancer, roleBuyer, roleSeller, roleFinanceAdmin)).Get("/invoices", handler.listInvoices)
			r.With(guard(roleConveyancer, roleBuyer, roleSeller, roleFinanceAdmin)).Get("/invoices/{id}", handler.getInvoice)
			r.With(guard(roleConveyancer, roleFinanceAdmin)).Post("/invoices/{id}/status", handler.updateInvoiceStatus)
		})
	})
	return r
}
