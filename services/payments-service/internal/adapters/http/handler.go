package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prrathnayake/conveyancers-marketplace/platform/httpx"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/application"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/contracts"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
)

type Handler struct {
	service  *application.Service
	validate *httpx.Validator
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service, validate: httpx.NewValidator()}
}

// decode reads and validates the body. It writes the error response itself
// and reports whether the handler should continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeDomainError(w, r, err)
		return false
	}
	return true
}

func actorFromRequest(r *http.Request) application.Actor {
	principal := httpx.PrincipalFromContext(r.Context())
	return application.Actor{
		SubjectID:      principal.SubjectID,
		Role:           principal.Role,
		RequestID:      httpx.RequestIDFromContext(r.Context()),
		IdempotencyKey: httpx.IdempotencyKey(r),
	}
}

// parseTimestamp reads an RFC3339 field. Empty input yields the zero time.
func parseTimestamp(raw, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, domain.Invalid("invalid_"+field, field+" must be an RFC3339 timestamp")
	}
	return t.UTC(), nil
}

func (h *Handler) createHold(w http.ResponseWriter, r *http.Request) {
	var req contracts.CreateHoldRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.service.CreateHold(r.Context(), actorFromRequest(r), application.CreateHoldInput{
		JobID:                req.JobID,
		MilestoneID:          req.MilestoneID,
		Currency:             req.Currency,
		AmountCents:          domain.Cents(req.AmountCents),
		Reference:            req.Reference,
		ConveyancerAccountID: req.ConveyancerAccountID,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, res)
}

func (h *Handler) listHolds(w http.ResponseWriter, r *http.Request) {
	holds, err := h.service.ListHolds(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, holds)
}

func (h *Handler) getHold(w http.ResponseWriter, r *http.Request) {
	payment, err := h.service.GetHold(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, payment)
}

func (h *Handler) releaseHold(w http.ResponseWriter, r *http.Request) {
	var req contracts.ReleaseHoldRequest
	if !h.decode(w, r, &req) {
		return
	}
	at, err := parseTimestamp(req.ReleasedAt, "released_at")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	payment, err := h.service.ReleaseHold(r.Context(), actorFromRequest(r), chi.URLParam(r, "id"), at)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, payment)
}

func (h *Handler) refundHold(w http.ResponseWriter, r *http.Request) {
	var req contracts.RefundHoldRequest
	if !h.decode(w, r, &req) {
		return
	}
	at, err := parseTimestamp(req.RefundedAt, "refunded_at")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	payment, err := h.service.RefundHold(r.Context(), actorFromRequest(r), chi.URLParam(r, "id"), at)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, payment)
}

func (h *Handler) recordPayout(w http.ResponseWriter, r *http.Request) {
	var req contracts.PayoutRequest
	if !h.decode(w, r, &req) {
		return
	}
	at, err := parseTimestamp(req.ProcessedAt, "processed_at")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	payout, err := h.service.RecordPayout(r.Context(), actorFromRequest(r), application.PayoutInput{
		PaymentID:     chi.URLParam(r, "id"),
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
		BSB:           req.BSB,
		Reference:     req.Reference,
		ProcessedAt:   at,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, payout)
}

func (h *Handler) getPayout(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetPayout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, view)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req contracts.CheckoutRequest
	if !h.decode(w, r, &req) {
		return
	}
	input := application.CheckoutInput{
		PaymentID:             req.PaymentID,
		PaymentMethod:         req.PaymentMethod,
		ServiceFeeRate:        req.ServiceFeeRate,
		GenerateInvoice:       req.GenerateInvoice,
		InvoiceRecipient:      req.InvoiceRecipient,
		LineDescription:       req.LineDescription,
		LineTaxRate:           req.LineTaxRate,
		ServiceFeeDescription: req.ServiceFeeDescription,
		ServiceFeeTaxRate:     req.ServiceFeeTaxRate,
		IssuedAt:              req.IssuedAt,
		DueAt:                 req.DueAt,
		InvoiceStatus:         req.InvoiceStatus,
	}
	processedAt, err := parseTimestamp(req.ProcessedAt, "processed_at")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !processedAt.IsZero() {
		input.ProcessedAt = &processedAt
	}
	res, err := h.service.CompleteCheckout(r.Context(), actorFromRequest(r), input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, res)
}

func (h *Handler) listCheckouts(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.service.ListCheckouts(r.Context(), r.URL.Query().Get("payment_id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, receipts)
}

func (h *Handler) getCheckout(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.service.GetCheckout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, receipt)
}

func (h *Handler) loyaltySchedule(w http.ResponseWriter, r *http.Request) {
	httpx.WriteSuccess(w, http.StatusOK, h.service.LoyaltySchedule(r.Context()))
}

func (h *Handler) loyaltyStatus(w http.ResponseWriter, r *http.Request) {
	accountID := strings.TrimSpace(chi.URLParam(r, "account_id"))
	if accountID == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "missing_account_id", "account_id is required")
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, h.service.LoyaltyStatus(r.Context(), accountID))
}

func (h *Handler) insights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.service.Insights(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, insights)
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req contracts.CreateInvoiceRequest
	if !h.decode(w, r, &req) {
		return
	}
	lines := make([]application.InvoiceLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, application.InvoiceLineInput{
			Description: line.Description,
			AmountCents: domain.Cents(line.AmountCents),
			TaxRate:     line.TaxRate,
		})
	}
	invoice, err := h.service.CreateInvoice(r.Context(), actorFromRequest(r), application.CreateInvoiceInput{
		JobID:     req.JobID,
		Recipient: req.Recipient,
		IssuedAt:  req.IssuedAt,
		DueAt:     req.DueAt,
		Lines:     lines,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, invoice)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.ListInvoices(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, invoices)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.service.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, invoice)
}

func (h *Handler) updateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	var req contracts.InvoiceStatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	invoice, err := h.service.UpdateInvoiceStatus(r.Context(), actorFromRequest(r), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, invoice)
}

func (h *Handler) invoiceSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.InvoiceSummary(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, summary)
}
