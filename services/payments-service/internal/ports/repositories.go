package ports

import (
	"context"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/platform/events"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
)

type IDGenerator interface {
	NewID(prefix string) string
}

// PaymentLedger serialises every read-modify-write on payment records.
type PaymentLedger interface {
	CreateHold(ctx context.Context, hold domain.NewHold) (domain.PaymentRecord, error)
	Get(ctx context.Context, paymentID string) (domain.PaymentRecord, error)
	List(ctx context.Context) ([]domain.PaymentRecord, error)
	Release(ctx context.Context, paymentID string, at time.Time) (domain.PaymentRecord, error)
	Refund(ctx context.Context, paymentID string, at time.Time) (domain.PaymentRecord, error)
	RecordPayout(ctx context.Context, instruction domain.PayoutInstruction) (domain.TrustPayout, error)
	LatestPayout(ctx context.Context, paymentID string) (domain.TrustPayout, error)
	Payouts(ctx context.Context, paymentID string) ([]domain.TrustPayout, error)
	Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutReceipt, error)
	GetCheckout(ctx context.Context, checkoutID string) (domain.CheckoutReceipt, error)
	GetCheckoutForPayment(ctx context.Context, paymentID string) (domain.CheckoutReceipt, error)
	Receipts(ctx context.Context) ([]domain.CheckoutReceipt, error)
}

type InvoiceLedger interface {
	Create(ctx context.Context, input domain.NewInvoice) (domain.InvoiceRecord, error)
	Get(ctx context.Context, invoiceID string) (domain.InvoiceRecord, error)
	List(ctx context.Context) ([]domain.InvoiceRecord, error)
	UpdateStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus) (domain.InvoiceRecord, error)
	// Advance steps through intermediate statuses to reach target.
	Advance(ctx context.Context, invoiceID string, target domain.InvoiceStatus) (domain.InvoiceRecord, error)
}

type LoyaltyEngine interface {
	ResolveRate(ctx context.Context, accountID string) float64
	RecordCheckout(ctx context.Context, accountID, jobID string) bool
	DescribeMember(ctx context.Context, accountID string) domain.MemberStatus
	Summaries(ctx context.Context) domain.LoyaltySummary
	Schedule() domain.TierSchedule
}

type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	ResponseCode int
	ResponseBody []byte
	ExpiresAt    time.Time
}

type IdempotencyRepository interface {
	Get(ctx context.Context, key string, now time.Time) (*IdempotencyRecord, error)
	Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error
	Complete(ctx context.Context, key string, responseCode int, responseBody []byte, at time.Time) error
	Abandon(ctx context.Context, key string) error
}

// InsightsCache holds the most recent insights rollup.
type InsightsCache interface {
	Get(ctx context.Context) (*domain.Insights, error)
	Put(ctx context.Context, insights domain.Insights, ttl time.Duration) error
}

type Outbox = events.Outbox

// BusinessMetrics receives domain counters for the metrics endpoint.
type BusinessMetrics interface {
	HoldCreated(currency string, amount domain.Cents)
	PaymentTransitioned(status domain.PaymentStatus)
	CheckoutCompleted(receipt domain.CheckoutReceipt)
	InvoiceStatusChanged(status domain.InvoiceStatus)
}
