package contracts

type CreateHoldRequest struct {
	JobID                string `json:"job_id" validate:"required"`
	MilestoneID          string `json:"milestone_id" validate:"required"`
	Currency             string `json:"currency" validate:"required"`
	AmountCents          int64  `json:"amount_cents"`
	Reference            string `json:"reference,omitempty"`
	ConveyancerAccountID string `json:"conveyancer_account_id,omitempty"`
}

type ReleaseHoldRequest struct {
	ReleasedAt string `json:"released_at"`
}

type RefundHoldRequest struct {
	RefundedAt string `json:"refunded_at"`
}

type PayoutRequest struct {
	AccountName   string `json:"account_name" validate:"required"`
	AccountNumber string `json:"account_number" validate:"required"`
	BSB           string `json:"bsb" validate:"required"`
	Reference     string `json:"reference,omitempty"`
	ProcessedAt   string `json:"processed_at" validate:"required"`
}

// CheckoutRequest leaves every pricing and invoice field optional; omitted
// values take the service defaults.
type CheckoutRequest struct {
	PaymentID             string   `json:"payment_id" validate:"required"`
	PaymentMethod         string   `json:"payment_method" validate:"required"`
	ServiceFeeRate        *float64 `json:"service_fee_rate,omitempty" validate:"omitempty,gte=0"`
	ProcessedAt           string   `json:"processed_at,omitempty"`
	GenerateInvoice       *bool    `json:"generate_invoice,omitempty"`
	InvoiceRecipient      string   `json:"invoice_recipient,omitempty"`
	LineDescription       string   `json:"line_description,omitempty"`
	LineTaxRate           float64  `json:"line_tax_rate,omitempty"`
	ServiceFeeDescription string   `json:"service_fee_description,omitempty"`
	ServiceFeeTaxRate     float64  `json:"service_fee_tax_rate,omitempty"`
	IssuedAt              string   `json:"issued_at,omitempty"`
	DueAt                 string   `json:"due_at,omitempty"`
	InvoiceStatus         string   `json:"invoice_status,omitempty"`
}

type InvoiceLineRequest struct {
	Description string  `json:"description"`
	AmountCents int64   `json:"amount_cents"`
	TaxRate     float64 `json:"tax_rate"`
}

type CreateInvoiceRequest struct {
	JobID     string               `json:"job_id" validate:"required"`
	Recipient string               `json:"recipient" validate:"required"`
	IssuedAt  string               `json:"issued_at" validate:"required"`
	DueAt     string               `json:"due_at" validate:"required"`
	Lines     []InvoiceLineRequest `json:"lines"`
}

type InvoiceStatusRequest struct {
	Status string `json:"status"`
}

type HealthResponse struct {
	Service string `json:"service"`
	Status  string `json:"status"`
}
