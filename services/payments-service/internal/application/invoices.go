package application

import (
	"context"
	"strings"

	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
)

// CreateInvoice drops lines without a description or a positive amount and
// clamps tax rates into [0,1] before building the invoice.
func (s *Service) CreateInvoice(ctx context.Context, actor Actor, input CreateInvoiceInput) (domain.InvoiceRecord, error) {
	lines := make([]domain.InvoiceLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		description := strings.TrimSpace(line.Description)
		if description == "" || line.AmountCents <= 0 {
			continue
		}
		lines = append(lines, domain.InvoiceLine{
			Description: description,
			AmountCents: line.AmountCents,
			TaxRate:     domain.ClampRate(line.TaxRate),
		})
	}
	invoice, err := s.invoices.Create(ctx, domain.NewInvoice{
		JobID:     input.JobID,
		Recipient: input.Recipient,
		IssuedAt:  input.IssuedAt,
		DueAt:     input.DueAt,
		Lines:     lines,
	})
	if err != nil {
		return domain.InvoiceRecord{}, err
	}
	s.metrics.InvoiceStatusChanged(invoice.Status)
	s.enqueue(ctx, actor, domain.EventInvoiceCreated, invoice.ID, invoiceEventData(invoice))
	return invoice, nil
}

func (s *Service) GetInvoice(ctx context.Context, invoiceID string) (domain.InvoiceRecord, error) {
	return s.invoices.Get(ctx, strings.TrimSpace(invoiceID))
}

func (s *Service) ListInvoices(ctx context.Context) ([]domain.InvoiceRecord, error) {
	return s.invoices.List(ctx)
}

func (s *Service) UpdateInvoiceStatus(ctx context.Context, actor Actor, invoiceID, status string) (domain.InvoiceRecord, error) {
	next, err := domain.ParseInvoiceStatus(status)
	if err != nil {
		return domain.InvoiceRecord{}, err
	}
	before, err := s.invoices.Get(ctx, strings.TrimSpace(invoiceID))
	if err != nil {
		return domain.InvoiceRecord{}, err
	}
	invoice, err := s.invoices.UpdateStatus(ctx, before.ID, next)
	if err != nil {
		return domain.InvoiceRecord{}, err
	}
	if before.Status != invoice.Status {
		s.metrics.InvoiceStatusChanged(invoice.Status)
		data := invoiceEventData(invoice)
		data["previous_status"] = before.Status
		s.enqueue(ctx, actor, domain.EventInvoiceStatusChange, invoice.ID, data)
	}
	return invoice, nil
}

func (s *Service) InvoiceSummary(ctx context.Context) (domain.InvoiceInsights, error) {
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return domain.InvoiceInsights{}, err
	}
	return domain.BuildInsights(s.nowFn(), nil, nil, invoices, domain.LoyaltySummary{}).Invoices, nil
}
