package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
)

// Business counts ledger activity. Amounts are in cents of each currency.
type Business struct {
	holds         *prometheus.CounterVec
	heldCents     *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	checkouts     *prometheus.CounterVec
	feeCents      *prometheus.CounterVec
	invoiceStatus *prometheus.CounterVec
}

func NewBusiness(registerer prometheus.Registerer) *Business {
	factory := promauto.With(registerer)
	return &Business{
		holds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_holds_created_total",
			Help: "Escrow holds created.",
		}, []string{"currency"}),
		heldCents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_held_cents_total",
			Help: "Cents placed into escrow.",
		}, []string{"currency"}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_transitions_total",
			Help: "Payment status transitions by resulting status.",
		}, []string{"status"}),
		checkouts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_checkouts_total",
			Help: "Completed checkouts.",
		}, []string{"currency", "method"}),
		feeCents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_service_fee_cents_total",
			Help: "Service fees charged at checkout.",
		}, []string{"currency"}),
		invoiceStatus: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_invoice_status_total",
			Help: "Invoices entering each status.",
		}, []string{"status"}),
	}
}

func (b *Business) HoldCreated(currency string, amount domain.Cents) {
	b.holds.WithLabelValues(currency).Inc()
	b.heldCents.WithLabelValues(currency).Add(float64(amount))
}

func (b *Business) PaymentTransitioned(status domain.PaymentStatus) {
	b.transitions.WithLabelValues(string(status)).Inc()
}

func (b *Business) CheckoutCompleted(receipt domain.CheckoutReceipt) {
	b.checkouts.WithLabelValues(receipt.Currency, receipt.Method).Inc()
	b.feeCents.WithLabelValues(receipt.Currency).Add(float64(receipt.ServiceFeeCents))
}

func (b *Business) InvoiceStatusChanged(status domain.InvoiceStatus) {
	b.invoiceStatus.WithLabelValues(string(status)).Inc()
}
