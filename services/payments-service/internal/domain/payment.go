package domain

import (
	"strings"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusHeld     PaymentStatus = "held"
	PaymentStatusReleased PaymentStatus = "released"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

const DefaultPayoutReference = "ESCROW_PAYOUT"

// PaymentRecord is escrowed money against one job milestone. At most one of
// ReleasedAt and RefundedAt is set and it always matches Status.
type PaymentRecord struct {
	ID                   string        `json:"id"`
	JobID                string        `json:"job_id"`
	MilestoneID          string        `json:"milestone_id"`
	Currency             string        `json:"currency"`
	AmountCents          Cents         `json:"amount_cents"`
	Reference            string        `json:"reference"`
	ConveyancerAccountID string        `json:"conveyancer_account_id,omitempty"`
	Status               PaymentStatus `json:"status"`
	CreatedAt            time.Time     `json:"created_at"`
	ReleasedAt           *time.Time    `json:"released_at,omitempty"`
	RefundedAt           *time.Time    `json:"refunded_at,omitempty"`
}

type NewHold struct {
	JobID                string
	MilestoneID          string
	Currency             string
	AmountCents          Cents
	Reference            string
	ConveyancerAccountID string
}

// Normalize validates a hold request and fills the default reference.
func (h NewHold) Normalize() (NewHold, error) {
	h.JobID = strings.TrimSpace(h.JobID)
	h.MilestoneID = strings.TrimSpace(h.MilestoneID)
	h.Reference = strings.TrimSpace(h.Reference)
	h.ConveyancerAccountID = strings.TrimSpace(h.ConveyancerAccountID)
	if h.JobID == "" || h.MilestoneID == "" || strings.TrimSpace(h.Currency) == "" {
		return NewHold{}, Invalid("missing_required_fields", "job_id, milestone_id and currency are required")
	}
	if h.AmountCents <= 0 {
		return NewHold{}, Invalid("invalid_amount", "amount_cents must be positive")
	}
	currency, err := NormalizeCurrency(h.Currency)
	if err != nil {
		return NewHold{}, err
	}
	h.Currency = currency
	if h.Reference == "" {
		h.Reference = h.JobID + "-" + h.MilestoneID
	}
	return h, nil
}

func (p *PaymentRecord) Release(at time.Time) error {
	if p.Status == PaymentStatusRefunded {
		return Transition("invalid_transition", "refunded payments cannot be released")
	}
	stamp := at.UTC()
	p.Status = PaymentStatusReleased
	p.ReleasedAt = &stamp
	p.RefundedAt = nil
	return nil
}

func (p *PaymentRecord) Refund(at time.Time) error {
	if p.Status == PaymentStatusReleased {
		return Transition("invalid_transition", "released payments cannot be refunded")
	}
	stamp := at.UTC()
	p.Status = PaymentStatusRefunded
	p.RefundedAt = &stamp
	p.ReleasedAt = nil
	return nil
}

// TrustPayout records funds disbursed from escrow to a bank account.
type TrustPayout struct {
	ID            string    `json:"id"`
	PaymentID     string    `json:"payment_id"`
	AccountName   string    `json:"account_name"`
	AccountNumber string    `json:"account_number"`
	BSB           string    `json:"bsb"`
	Reference     string    `json:"reference"`
	ProcessedAt   time.Time `json:"processed_at"`
}

type PayoutInstruction struct {
	PaymentID     string
	AccountName   string
	AccountNumber string
	BSB           string
	Reference     string
	ProcessedAt   time.Time
}

func (p PayoutInstruction) Normalize() (PayoutInstruction, error) {
	p.PaymentID = strings.TrimSpace(p.PaymentID)
	p.AccountName = strings.TrimSpace(p.AccountName)
	p.AccountNumber = strings.TrimSpace(p.AccountNumber)
	p.BSB = strings.TrimSpace(p.BSB)
	p.Reference = strings.TrimSpace(p.Reference)
	if p.PaymentID == "" || p.AccountName == "" || p.AccountNumber == "" || p.BSB == "" || p.ProcessedAt.IsZero() {
		return PayoutInstruction{}, Invalid("missing_required_fields", "account_name, account_number, bsb and processed_at are required")
	}
	if p.Reference == "" {
		p.Reference = DefaultPayoutReference
	}
	p.ProcessedAt = p.ProcessedAt.UTC()
	return p, nil
}

// CheckoutReceipt is produced once per Held payment that is checked out.
// TotalCents always equals HoldAmountCents + ServiceFeeCents.
type CheckoutReceipt struct {
	ID              string    `json:"id"`
	PaymentID       string    `json:"payment_id"`
	JobID           string    `json:"job_id"`
	Method          string    `json:"method"`
	Currency        string    `json:"currency"`
	Reference       string    `json:"reference"`
	HoldAmountCents Cents     `json:"hold_amount_cents"`
	ServiceFeeRate  float64   `json:"service_fee_rate"`
	ServiceFeeCents Cents     `json:"service_fee_cents"`
	TotalCents      Cents     `json:"total_cents"`
	ProcessedAt     time.Time `json:"processed_at"`
	InvoiceID       string    `json:"invoice_id,omitempty"`
}

type CheckoutRequest struct {
	PaymentID      string
	Method         string
	ServiceFeeRate float64
	ProcessedAt    time.Time
	InvoiceID      string
}

// Checkout moves a Held payment to Released and prices the service fee.
func (p *PaymentRecord) Checkout(receiptID string, req CheckoutRequest) (CheckoutReceipt, error) {
	if p.Status != PaymentStatusHeld {
		return CheckoutReceipt{}, Transition("hold_not_available", "only held payments can be checked out")
	}
	if err := p.Release(req.ProcessedAt); err != nil {
		return CheckoutReceipt{}, err
	}
	fee := ApplyRate(p.AmountCents, req.ServiceFeeRate)
	return CheckoutReceipt{
		ID:              receiptID,
		PaymentID:       p.ID,
		JobID:           p.JobID,
		Method:          req.Method,
		Currency:        p.Currency,
		Reference:       p.Reference,
		HoldAmountCents: p.AmountCents,
		ServiceFeeRate:  req.ServiceFeeRate,
		ServiceFeeCents: fee,
		TotalCents:      p.AmountCents + fee,
		ProcessedAt:     req.ProcessedAt.UTC(),
		InvoiceID:       req.InvoiceID,
	}, nil
}
