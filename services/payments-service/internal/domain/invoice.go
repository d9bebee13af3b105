package domain

import (
	"strings"
	"time"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft  InvoiceStatus = "draft"
	InvoiceStatusIssued InvoiceStatus = "issued"
	InvoiceStatusPaid   InvoiceStatus = "paid"
	InvoiceStatusVoided InvoiceStatus = "voided"
)

// DateLayout is the calendar date format for issued_at and due_at.
const DateLayout = "2006-01-02"

var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:  {InvoiceStatusIssued, InvoiceStatusVoided},
	InvoiceStatusIssued: {InvoiceStatusPaid, InvoiceStatusVoided},
}

func ParseInvoiceStatus(raw string) (InvoiceStatus, error) {
	switch s := InvoiceStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusPaid, InvoiceStatusVoided:
		return s, nil
	case "":
		return "", Invalid("missing_status", "status is required")
	default:
		return "", Invalid("invalid_status", "status must be draft, issued, paid or voided")
	}
}

// CanTransitionTo reports whether next is a legal move. Re-applying the
// current status is allowed and changes nothing.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range invoiceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PathTo lists the statuses to step through to reach target from s, or
// false when target is unreachable.
func (s InvoiceStatus) PathTo(target InvoiceStatus) ([]InvoiceStatus, bool) {
	if s == target {
		return nil, true
	}
	if s.CanTransitionTo(target) {
		return []InvoiceStatus{target}, true
	}
	for _, via := range invoiceTransitions[s] {
		if via.CanTransitionTo(target) && via != target {
			return []InvoiceStatus{via, target}, true
		}
	}
	return nil, false
}

type InvoiceLine struct {
	Description string  `json:"description"`
	AmountCents Cents   `json:"amount_cents"`
	TaxRate     float64 `json:"tax_rate"`
}

type InvoiceRecord struct {
	ID            string        `json:"id"`
	JobID         string        `json:"job_id"`
	Recipient     string        `json:"recipient"`
	Status        InvoiceStatus `json:"status"`
	Lines         []InvoiceLine `json:"lines"`
	SubtotalCents Cents         `json:"subtotal_cents"`
	TaxCents      Cents         `json:"tax_cents"`
	TotalCents    Cents         `json:"total_cents"`
	IssuedAt      string        `json:"issued_at"`
	DueAt         string        `json:"due_at"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type NewInvoice struct {
	JobID     string
	Recipient string
	IssuedAt  string
	DueAt     string
	Lines     []InvoiceLine
}

// ComputeTotals sums line amounts and the per-line truncated tax.
func ComputeTotals(lines []InvoiceLine) (subtotal, tax, total Cents) {
	for _, line := range lines {
		subtotal += line.AmountCents
		tax += TaxOn(line.AmountCents, line.TaxRate)
	}
	return subtotal, tax, subtotal + tax
}

// ValidDate reports whether raw is a YYYY-MM-DD calendar date.
func ValidDate(raw string) bool {
	_, err := time.Parse(DateLayout, raw)
	return err == nil
}

// BuildInvoice validates input and returns a Draft invoice with totals.
func BuildInvoice(id string, input NewInvoice, now time.Time) (InvoiceRecord, error) {
	input.JobID = strings.TrimSpace(input.JobID)
	input.Recipient = strings.TrimSpace(input.Recipient)
	input.IssuedAt = strings.TrimSpace(input.IssuedAt)
	input.DueAt = strings.TrimSpace(input.DueAt)
	if input.JobID == "" || input.Recipient == "" || input.IssuedAt == "" || input.DueAt == "" {
		return InvoiceRecord{}, Invalid("missing_required_fields", "job_id, recipient, issued_at and due_at are required")
	}
	if !ValidDate(input.IssuedAt) || !ValidDate(input.DueAt) {
		return InvoiceRecord{}, Invalid("invalid_date", "issued_at and due_at must be YYYY-MM-DD")
	}
	if input.DueAt < input.IssuedAt {
		return InvoiceRecord{}, Invalid("due_before_issue", "due_at must not precede issued_at")
	}
	if len(input.Lines) == 0 {
		return InvoiceRecord{}, Invalid("missing_line_items", "at least one line item is required")
	}
	lines := make([]InvoiceLine, len(input.Lines))
	for i, line := range input.Lines {
		line.Description = strings.TrimSpace(line.Description)
		if line.Description == "" || line.AmountCents <= 0 || !ValidRate(line.TaxRate, 1) {
			return InvoiceRecord{}, Invalid("invalid_line_item", "line items need a description, a positive amount and a tax rate in [0,1]")
		}
		lines[i] = line
	}
	subtotal, tax, total := ComputeTotals(lines)
	return InvoiceRecord{
		ID:            id,
		JobID:         input.JobID,
		Recipient:     input.Recipient,
		Status:        InvoiceStatusDraft,
		Lines:         lines,
		SubtotalCents: subtotal,
		TaxCents:      tax,
		TotalCents:    total,
		IssuedAt:      input.IssuedAt,
		DueAt:         input.DueAt,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}, nil
}

func (inv *InvoiceRecord) Transition(next InvoiceStatus, at time.Time) error {
	if !inv.Status.CanTransitionTo(next) {
		return Transition("invalid_transition", "invoice cannot move from "+string(inv.Status)+" to "+string(next))
	}
	if inv.Status != next {
		inv.Status = next
		inv.UpdatedAt = at.UTC()
	}
	return nil
}

// Overdue reports whether an unsettled invoice is past its due date.
func (inv InvoiceRecord) Overdue(today string) bool {
	if inv.Status == InvoiceStatusPaid || inv.Status == InvoiceStatusVoided {
		return false
	}
	return inv.DueAt < today
}
