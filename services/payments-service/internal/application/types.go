package application

import (
	"log/slog"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/ports"
)

type Config struct {
	ServiceName          string
	IdempotencyTTL       time.Duration
	InsightsCacheTTL     time.Duration
	MaxServiceFeeRate    float64
	DefaultInvoiceStatus domain.InvoiceStatus
}

type Actor struct {
	SubjectID      string
	Role           string
	RequestID      string
	IdempotencyKey string
}

type CreateHoldInput struct {
	JobID                string       `json:"job_id"`
	MilestoneID          string       `json:"milestone_id"`
	Currency             string       `json:"currency"`
	AmountCents          domain.Cents `json:"amount_cents"`
	Reference            string       `json:"reference"`
	ConveyancerAccountID string       `json:"conveyancer_account_id"`
}

type HoldResult struct {
	Payment domain.PaymentRecord `json:"payment"`
	Loyalty *domain.MemberStatus `json:"loyalty,omitempty"`
}

type PayoutInput struct {
	PaymentID     string
	AccountName   string
	AccountNumber string
	BSB           string
	Reference     string
	ProcessedAt   time.Time
}

type PayoutView struct {
	Latest  domain.TrustPayout   `json:"latest"`
	History []domain.TrustPayout `json:"history"`
}

// CheckoutInput carries the checkout request. Nil pointers and empty strings
// select the documented defaults.
type CheckoutInput struct {
	PaymentID             string     `json:"payment_id"`
	PaymentMethod         string     `json:"payment_method"`
	ServiceFeeRate        *float64   `json:"service_fee_rate,omitempty"`
	ProcessedAt           *time.Time `json:"processed_at,omitempty"`
	GenerateInvoice       *bool      `json:"generate_invoice,omitempty"`
	InvoiceRecipient      string     `json:"invoice_recipient,omitempty"`
	LineDescription       string     `json:"line_description,omitempty"`
	LineTaxRate           float64    `json:"line_tax_rate,omitempty"`
	ServiceFeeDescription string     `json:"service_fee_description,omitempty"`
	ServiceFeeTaxRate     float64    `json:"service_fee_tax_rate,omitempty"`
	IssuedAt              string     `json:"issued_at,omitempty"`
	DueAt                 string     `json:"due_at,omitempty"`
	InvoiceStatus         string     `json:"invoice_status,omitempty"`
}

type CheckoutResult struct {
	Receipt domain.CheckoutReceipt `json:"receipt"`
	Invoice *domain.InvoiceRecord  `json:"invoice,omitempty"`
	Loyalty *domain.MemberStatus   `json:"loyalty,omitempty"`
}

type InvoiceLineInput struct {
	Description string
	AmountCents domain.Cents
	TaxRate     float64
}

type CreateInvoiceInput struct {
	JobID     string
	Recipient string
	IssuedAt  string
	DueAt     string
	Lines     []InvoiceLineInput
}

type Service struct {
	cfg         Config
	logger      *slog.Logger
	ledger      ports.PaymentLedger
	invoices    ports.InvoiceLedger
	loyalty     ports.LoyaltyEngine
	idempotency ports.IdempotencyRepository
	outbox      ports.Outbox
	insights    ports.InsightsCache
	metrics     ports.BusinessMetrics
	nowFn       func() time.Time
}

type Dependencies struct {
	Config      Config
	Logger      *slog.Logger
	Ledger      ports.PaymentLedger
	Invoices    ports.InvoiceLedger
	Loyalty     ports.LoyaltyEngine
	Idempotency ports.IdempotencyRepository
	Outbox      ports.Outbox
	Insights    ports.InsightsCache
	Metrics     ports.BusinessMetrics
	Clock       func() time.Time
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "payments-service"
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 24 * time.Hour
	}
	if cfg.MaxServiceFeeRate <= 0 {
		cfg.MaxServiceFeeRate = 0.25
	}
	if cfg.DefaultInvoiceStatus == "" {
		cfg.DefaultInvoiceStatus = domain.InvoiceStatusIssued
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	nowFn := deps.Clock
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{
		cfg:         cfg,
		logger:      logger.With("module", "application", "layer", "application"),
		ledger:      deps.Ledger,
		invoices:    deps.Invoices,
		loyalty:     deps.Loyalty,
		idempotency: deps.Idempotency,
		outbox:      deps.Outbox,
		insights:    deps.Insights,
		metrics:     metrics,
		nowFn:       nowFn,
	}
}

type noopMetrics struct{}

func (noopMetrics) HoldCreated(string, domain.Cents) {}
func (noopMetrics) PaymentTransitioned(domain.PaymentStatus) {}
func (noopMetrics) CheckoutCompleted(domain.CheckoutReceipt) {}
func (noopMetrics) InvoiceStatusChanged(domain.InvoiceStatus) {}
