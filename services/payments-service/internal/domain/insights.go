package domain

import "time"

const recentCheckoutLimit = 5

type StatusTotals struct {
	Count      int   `json:"count"`
	TotalCents Cents `json:"total_cents"`
}

type PaymentInsights struct {
	Total            int          `json:"total"`
	Held             StatusTotals `json:"held"`
	Released         StatusTotals `json:"released"`
	Refunded         StatusTotals `json:"refunded"`
	OutstandingCents Cents        `json:"outstanding_cents"`
}

type CheckoutInsights struct {
	Total             int               `json:"total"`
	TotalCents        Cents             `json:"total_cents"`
	ServiceFeeCents   Cents             `json:"service_fee_cents"`
	AverageOrderCents Cents             `json:"average_order_cents"`
	Recent            []CheckoutReceipt `json:"recent"`
}

type InvoiceInsights struct {
	Total            int   `json:"total"`
	Draft            int   `json:"draft"`
	Issued           int   `json:"issued"`
	Paid             int   `json:"paid"`
	Voided           int   `json:"voided"`
	Overdue          int   `json:"overdue"`
	OutstandingCents Cents `json:"outstanding_cents"`
	TotalCents       Cents `json:"total_cents"`
}

// Insights is a rollup over independent store snapshots. It is not a single
// point-in-time view across stores.
type Insights struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Payments    PaymentInsights  `json:"payments"`
	Checkouts   CheckoutInsights `json:"checkouts"`
	Invoices    InvoiceInsights  `json:"invoices"`
	Loyalty     LoyaltySummary   `json:"loyalty"`
}

// BuildInsights expects receipts in processing order, oldest first.
func BuildInsights(now time.Time, payments []PaymentRecord, receipts []CheckoutReceipt, invoices []InvoiceRecord, loyalty LoyaltySummary) Insights {
	out := Insights{GeneratedAt: now.UTC(), Loyalty: loyalty}

	out.Payments.Total = len(payments)
	for _, p := range payments {
		var bucket *StatusTotals
		switch p.Status {
		case PaymentStatusHeld:
			bucket = &out.Payments.Held
		case PaymentStatusReleased:
			bucket = &out.Payments.Released
		case PaymentStatusRefunded:
			bucket = &out.Payments.Refunded
		default:
			continue
		}
		bucket.Count++
		bucket.TotalCents += p.AmountCents
	}
	out.Payments.OutstandingCents = out.Payments.Held.TotalCents

	out.Checkouts.Total = len(receipts)
	for _, r := range receipts {
		out.Checkouts.TotalCents += r.TotalCents
		out.Checkouts.ServiceFeeCents += r.ServiceFeeCents
	}
	if len(receipts) > 0 {
		out.Checkouts.AverageOrderCents = out.Checkouts.TotalCents / Cents(len(receipts))
	}
	out.Checkouts.Recent = make([]CheckoutReceipt, 0, recentCheckoutLimit)
	for i := len(receipts) - 1; i >= 0 && len(out.Checkouts.Recent) < recentCheckoutLimit; i-- {
		out.Checkouts.Recent = append(out.Checkouts.Recent, receipts[i])
	}

	today := now.UTC().Format(DateLayout)
	out.Invoices.Total = len(invoices)
	for _, inv := range invoices {
		out.Invoices.TotalCents += inv.TotalCents
		switch inv.Status {
		case InvoiceStatusDraft:
			out.Invoices.Draft++
		case InvoiceStatusIssued:
			out.Invoices.Issued++
			out.Invoices.OutstandingCents += inv.TotalCents
		case InvoiceStatusPaid:
			out.Invoices.Paid++
		case InvoiceStatusVoided:
			out.Invoices.Voided++
		}
		if inv.Overdue(today) {
			out.Invoices.Overdue++
		}
	}
	return out
}
