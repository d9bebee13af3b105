package application

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
)

const (
	defaultLineDescription       = "Conveyancing milestone"
	defaultServiceFeeDescription = "Payment processing fee"
)

type checkoutPlan struct {
	rate          float64
	processedAt   time.Time
	invoice       *domain.NewInvoice
	invoiceStatus domain.InvoiceStatus
}

// CompleteCheckout releases a held payment with its service fee, optionally
// issues the matching invoice and credits the conveyancer's loyalty record.
// If the ledger rejects the checkout after the invoice was created, the
// invoice is voided.
func (s *Service) CompleteCheckout(ctx context.Context, actor Actor, input CheckoutInput) (CheckoutResult, error) {
	input.PaymentID = strings.TrimSpace(input.PaymentID)
	input.PaymentMethod = strings.TrimSpace(input.PaymentMethod)
	if input.PaymentID == "" || input.PaymentMethod == "" {
		return CheckoutResult{}, domain.Invalid("missing_required_fields", "payment_id and payment_method are required")
	}
	requestHash := hashJSON(input)
	var out CheckoutResult
	if ok, err := s.replay(ctx, actor.IdempotencyKey, requestHash, &out); err != nil {
		return CheckoutResult{}, err
	} else if ok {
		return out, nil
	}

	payment, err := s.ledger.Get(ctx, input.PaymentID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if payment.Status != domain.PaymentStatusHeld {
		return CheckoutResult{}, domain.Transition("hold_not_available", "only held payments can be checked out")
	}
	plan, err := s.planCheckout(ctx, payment, input)
	if err != nil {
		return CheckoutResult{}, err
	}
	if err := s.reserve(ctx, actor.IdempotencyKey, requestHash); err != nil {
		return CheckoutResult{}, err
	}

	var invoice *domain.InvoiceRecord
	if plan.invoice != nil {
		created, err := s.invoices.Create(ctx, *plan.invoice)
		if err != nil {
			s.abandon(ctx, actor.IdempotencyKey)
			return CheckoutResult{}, err
		}
		invoice = &created
		s.metrics.InvoiceStatusChanged(created.Status)
	}

	req := domain.CheckoutRequest{
		PaymentID:      payment.ID,
		Method:         input.PaymentMethod,
		ServiceFeeRate: plan.rate,
		ProcessedAt:    plan.processedAt,
	}
	if invoice != nil {
		req.InvoiceID = invoice.ID
	}
	receipt, err := s.ledger.Checkout(ctx, req)
	if err != nil {
		if invoice != nil {
			if voided, voidErr := s.invoices.Advance(ctx, invoice.ID, domain.InvoiceStatusVoided); voidErr == nil {
				s.metrics.InvoiceStatusChanged(voided.Status)
			} else {
				s.logger.ErrorContext(ctx, "checkout invoice compensation failed",
					"operation", "complete_checkout",
					"outcome", "failure",
					"invoice_id", invoice.ID,
					"error", voidErr,
				)
			}
		}
		s.abandon(ctx, actor.IdempotencyKey)
		return CheckoutResult{}, err
	}
	out.Receipt = receipt
	s.metrics.CheckoutCompleted(receipt)
	s.metrics.PaymentTransitioned(domain.PaymentStatusReleased)

	if invoice != nil {
		advanced, err := s.invoices.Advance(ctx, invoice.ID, plan.invoiceStatus)
		if err != nil {
			s.logger.WarnContext(ctx, "checkout invoice status not applied",
				"operation", "complete_checkout",
				"outcome", "partial",
				"invoice_id", invoice.ID,
				"target_status", plan.invoiceStatus,
				"error", err,
			)
		} else {
			if advanced.Status != invoice.Status {
				s.metrics.InvoiceStatusChanged(advanced.Status)
			}
			invoice = &advanced
		}
		out.Invoice = invoice
		s.enqueue(ctx, actor, domain.EventInvoiceCreated, invoice.ID, invoiceEventData(*invoice))
	}

	if payment.ConveyancerAccountID != "" {
		if s.loyalty.RecordCheckout(ctx, payment.ConveyancerAccountID, payment.JobID) {
			s.enqueue(ctx, actor, domain.EventLoyaltyJobCredited, payment.ConveyancerAccountID, map[string]any{
				"account_id": payment.ConveyancerAccountID,
				"job_id":     payment.JobID,
			})
		}
		member := s.loyalty.DescribeMember(ctx, payment.ConveyancerAccountID)
		out.Loyalty = &member
	}

	s.enqueue(ctx, actor, domain.EventCheckoutCompleted, receipt.PaymentID, map[string]any{
		"payment_id":        receipt.PaymentID,
		"checkout_id":       receipt.ID,
		"job_id":            receipt.JobID,
		"method":            receipt.Method,
		"currency":          receipt.Currency,
		"hold_amount_cents": receipt.HoldAmountCents,
		"service_fee_cents": receipt.ServiceFeeCents,
		"total_cents":       receipt.TotalCents,
		"invoice_id":        receipt.InvoiceID,
	})
	s.complete(ctx, actor.IdempotencyKey, http.StatusCreated, out)
	return out, nil
}

func (s *Service) planCheckout(ctx context.Context, payment domain.PaymentRecord, input CheckoutInput) (checkoutPlan, error) {
	plan := checkoutPlan{processedAt: s.nowFn()}
	if input.ServiceFeeRate != nil {
		if !domain.ValidRate(*input.ServiceFeeRate, s.cfg.MaxServiceFeeRate) {
			return checkoutPlan{}, domain.Invalid("invalid_service_fee_rate", "service_fee_rate is out of range")
		}
		plan.rate = *input.ServiceFeeRate
	} else {
		plan.rate = s.loyalty.ResolveRate(ctx, payment.ConveyancerAccountID)
	}
	if input.ProcessedAt != nil && !input.ProcessedAt.IsZero() {
		plan.processedAt = input.ProcessedAt.UTC()
	}
	if input.GenerateInvoice != nil && !*input.GenerateInvoice {
		return plan, nil
	}

	plan.invoiceStatus = s.cfg.DefaultInvoiceStatus
	if strings.TrimSpace(input.InvoiceStatus) != "" {
		status, err := domain.ParseInvoiceStatus(input.InvoiceStatus)
		if err != nil {
			return checkoutPlan{}, err
		}
		plan.invoiceStatus = status
	}
	issuedAt := strings.TrimSpace(input.IssuedAt)
	if issuedAt == "" {
		issuedAt = s.nowFn().Format(domain.DateLayout)
	}
	dueAt := strings.TrimSpace(input.DueAt)
	if dueAt == "" {
		dueAt = issuedAt
	}
	if !domain.ValidDate(issuedAt) || !domain.ValidDate(dueAt) {
		return checkoutPlan{}, domain.Invalid("invalid_invoice_date", "issued_at and due_at must be YYYY-MM-DD")
	}
	if dueAt < issuedAt {
		return checkoutPlan{}, domain.Invalid("due_before_issue", "due_at must not precede issued_at")
	}

	recipient := strings.TrimSpace(input.InvoiceRecipient)
	if recipient == "" {
		recipient = payment.JobID + "-client"
	}
	lineDescription := strings.TrimSpace(input.LineDescription)
	if lineDescription == "" {
		lineDescription = defaultLineDescription
	}
	lines := []domain.InvoiceLine{{
		Description: lineDescription,
		AmountCents: payment.AmountCents,
		TaxRate:     domain.ClampRate(input.LineTaxRate),
	}}
	if fee := domain.ApplyRate(payment.AmountCents, plan.rate); fee > 0 {
		feeDescription := strings.TrimSpace(input.ServiceFeeDescription)
		if feeDescription == "" {
			feeDescription = defaultServiceFeeDescription
		}
		lines = append(lines, domain.InvoiceLine{
			Description: feeDescription,
			AmountCents: fee,
			TaxRate:     domain.ClampRate(input.ServiceFeeTaxRate),
		})
	}
	plan.invoice = &domain.NewInvoice{
		JobID:     payment.JobID,
		Recipient: recipient,
		IssuedAt:  issuedAt,
		DueAt:     dueAt,
		Lines:     lines,
	}
	return plan, nil
}

func (s *Service) GetCheckout(ctx context.Context, checkoutID string) (domain.CheckoutReceipt, error) {
	return s.ledger.GetCheckout(ctx, strings.TrimSpace(checkoutID))
}

// ListCheckouts returns every receipt, or only the one for paymentID.
func (s *Service) ListCheckouts(ctx context.Context, paymentID string) ([]domain.CheckoutReceipt, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return s.ledger.Receipts(ctx)
	}
	receipt, err := s.ledger.GetCheckoutForPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return []domain.CheckoutReceipt{receipt}, nil
}
