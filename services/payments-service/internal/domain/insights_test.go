package domain

import (
	"testing"
	"time"
)

func TestBuildInsights(t *testing.T) {
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	released := now.Add(-time.Hour)
	payments := []PaymentRecord{
		{ID: "h1", AmountCents: 1000, Status: PaymentStatusHeld},
		{ID: "h2", AmountCents: 2000, Status: PaymentStatusHeld},
		{ID: "h3", AmountCents: 5000, Status: PaymentStatusReleased, ReleasedAt: &released},
		{ID: "h4", AmountCents: 700, Status: PaymentStatusRefunded, RefundedAt: &released},
	}
	var receipts []CheckoutReceipt
	for i := 1; i <= 7; i++ {
		receipts = append(receipts, CheckoutReceipt{ID: string(rune('a' + i - 1)), TotalCents: Cents(i * 100), ServiceFeeCents: Cents(i)})
	}
	invoices := []InvoiceRecord{
		{Status: InvoiceStatusDraft, TotalCents: 10, DueAt: "2024-01-01"},
		{Status: InvoiceStatusIssued, TotalCents: 20, DueAt: "2024-01-31"},
		{Status: InvoiceStatusIssued, TotalCents: 30, DueAt: "2024-02-01"},
		{Status: InvoiceStatusPaid, TotalCents: 40, DueAt: "2023-12-01"},
		{Status: InvoiceStatusVoided, TotalCents: 50, DueAt: "2023-12-01"},
	}

	got := BuildInsights(now, payments, receipts, invoices, DefaultTierSchedule().Summarize(nil))

	if got.Payments.Total != 4 || got.Payments.Held.Count != 2 || got.Payments.Held.TotalCents != 3000 || got.Payments.OutstandingCents != 3000 {
		t.Fatalf("unexpected payment rollup %+v", got.Payments)
	}
	if got.Payments.Released.TotalCents != 5000 || got.Payments.Refunded.Count != 1 {
		t.Fatalf("unexpected payment buckets %+v", got.Payments)
	}
	if got.Checkouts.Total != 7 || got.Checkouts.TotalCents != 2800 || got.Checkouts.ServiceFeeCents != 28 || got.Checkouts.AverageOrderCents != 400 {
		t.Fatalf("unexpected checkout rollup %+v", got.Checkouts)
	}
	if len(got.Checkouts.Recent) != 5 || got.Checkouts.Recent[0].ID != "g" || got.Checkouts.Recent[4].ID != "c" {
		t.Fatalf("recent checkouts should be newest first, got %+v", got.Checkouts.Recent)
	}
	inv := got.Invoices
	if inv.Total != 5 || inv.Draft != 1 || inv.Issued != 2 || inv.Paid != 1 || inv.Voided != 1 {
		t.Fatalf("unexpected invoice counts %+v", inv)
	}
	if inv.Overdue != 2 || inv.OutstandingCents != 50 || inv.TotalCents != 150 {
		t.Fatalf("unexpected invoice money %+v", inv)
	}
	if len(got.Loyalty.Tiers) != 3 {
		t.Fatalf("expected loyalty tiers in rollup")
	}
}

func TestBuildInsightsEmpty(t *testing.T) {
	got := BuildInsights(time.Now(), nil, nil, nil, LoyaltySummary{})
	if got.Checkouts.AverageOrderCents != 0 || got.Checkouts.Recent == nil {
		t.Fatalf("empty rollup should have zero average and empty recent list: %+v", got.Checkouts)
	}
}
