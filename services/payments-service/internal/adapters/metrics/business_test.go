package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
)

func TestBusinessCounters(t *testing.T) {
	b := NewBusiness(prometheus.NewRegistry())
	b.HoldCreated("AUD", 500000)
	b.HoldCreated("AUD", 1000)
	b.CheckoutCompleted(domain.CheckoutReceipt{Currency: "AUD", Method: "card", ServiceFeeCents: 7500})
	b.PaymentTransitioned(domain.PaymentStatusReleased)
	b.InvoiceStatusChanged(domain.InvoiceStatusIssued)

	if got := testutil.ToFloat64(b.holds.WithLabelValues("AUD")); got != 2 {
		t.Fatalf("holds = %v", got)
	}
	if got := testutil.ToFloat64(b.heldCents.WithLabelValues("AUD")); got != 501000 {
		t.Fatalf("held cents = %v", got)
	}
	if got := testutil.ToFloat64(b.feeCents.WithLabelValues("AUD")); got != 7500 {
		t.Fatalf("fee cents = %v", got)
	}
	if got := testutil.ToFloat64(b.transitions.WithLabelValues("released")); got != 1 {
		t.Fatalf("transitions = %v", got)
	}
	if got := testutil.ToFloat64(b.invoiceStatus.WithLabelValues("issued")); got != 1 {
		t.Fatalf("invoice status = %v", got)
	}
}
