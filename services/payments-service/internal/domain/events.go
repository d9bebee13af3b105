package domain

const (
	EventHoldCreated         = "payment.hold_created"
	EventPaymentReleased     = "payment.released"
	EventPaymentRefunded     = "payment.refunded"
	EventPayoutRecorded      = "payment.payout_recorded"
	EventCheckoutCompleted   = "payment.checkout_completed"
	EventInvoiceCreated      = "invoice.created"
	EventInvoiceStatusChange = "invoice.status_changed"
	EventLoyaltyJobCredited  = "loyalty.job_credited"
)

// EventPartitionKeyPath names the envelope field each event is keyed by.
func EventPartitionKeyPath(eventType string) string {
	switch eventType {
	case EventInvoiceCreated, EventInvoiceStatusChange:
		return "data.invoice_id"
	case EventLoyaltyJobCredited:
		return "data.account_id"
	case EventHoldCreated, EventPaymentReleased, EventPaymentRefunded, EventPayoutRecorded, EventCheckoutCompleted:
		return "data.payment_id"
	default:
		return ""
	}
}
