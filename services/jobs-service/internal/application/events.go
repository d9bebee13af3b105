package application

import (
	"context"

	"github.com/prrathnayake/conveyancers-marketplace/platform/events"
	"github.com/prrathnayake/conveyancers-marketplace/services/jobs-service/internal/domain"
)

func (s *Service) enqueue(ctx context.Context, actor Actor, eventType, jobID string, data any) {
	if s.outbox == nil {
		return
	}
	rec, err := events.NewRecord(s.cfg.ServiceName, eventType, domain.EventPartitionKeyPath, jobID, actor.RequestID, data, s.nowFn())
	if err == nil {
		err = s.outbox.Enqueue(ctx, rec)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "event enqueue failed",
			"operation", "enqueue_event",
			"outcome", "failure",
			"event_type", eventType,
			"job_id", jobID,
			"error", err,
		)
	}
}
