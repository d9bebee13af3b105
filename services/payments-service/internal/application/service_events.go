package application

import (
	"context"

	"github.com/prrathnayake/conveyancers-marketplace/platform/events"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
)

// enqueue writes an event to the outbox. Store changes are already committed
// when this runs, so failures are logged rather than returned.
func (s *Service) enqueue(ctx context.Context, actor Actor, eventType, partitionKey string, data any) {
	if s.outbox == nil {
		return
	}
	rec, err := events.NewRecord(s.cfg.ServiceName, eventType, domain.EventPartitionKeyPath(eventType), partitionKey, actor.RequestID, data, s.nowFn())
	if err == nil {
		err = s.outbox.Enqueue(ctx, rec)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "event enqueue failed",
			"operation", "enqueue_event",
			"outcome", "failure",
			"event_type", eventType,
			"partition_key", partitionKey,
			"error", err,
		)
	}
}

func paymentEventData(p domain.PaymentRecord) map[string]any {
	data := map[string]any{
		"payment_id":   p.ID,
		"job_id":       p.JobID,
		"milestone_id": p.MilestoneID,
		"currency":     p.Currency,
		"amount_cents": p.AmountCents,
		"status":       p.Status,
	}
	if p.ConveyancerAccountID != "" {
		data["conveyancer_account_id"] = p.ConveyancerAccountID
	}
	if p.ReleasedAt != nil {
		data["released_at"] = p.ReleasedAt
	}
	if p.RefundedAt != nil {
		data["refunded_at"] = p.RefundedAt
	}
	return data
}

func invoiceEventData(inv domain.InvoiceRecord) map[string]any {
	return map[string]any{
		"invoice_id":  inv.ID,
		"job_id":      inv.JobID,
		"status":      inv.Status,
		"total_cents": inv.TotalCents,
		"due_at":      inv.DueAt,
	}
}
