package application

import (
	"context"
	"encoding/json"

	"github.com/prrathnayake/conveyancers-marketplace/services/jobs-service/internal/domain"
)

func (s *Service) PostMessage(ctx context.Context, actor Actor, jobID string, input PostMessageInput) (domain.ChatMessage, error) {
	sender, body, err := domain.ValidateMessage(input.Sender, input.Body)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	msg, err := s.jobs.AddMessage(ctx, jobID, sender, body, domain.Scan(body))
	if err != nil {
		return domain.ChatMessage{}, err
	}
	s.metrics.MessagePosted()
	s.enqueue(ctx, actor, domain.EventMessagePosted, msg.JobID, map[string]any{
		"job_id":     msg.JobID,
		"message_id": msg.ID,
		"sender":     msg.Sender,
		"flag_count": len(msg.Flags),
	})
	s.broadcast(ctx, msg.JobID, realtimeEvent{Type: "message", Message: &msg})
	for _, flag := range msg.Flags {
		kind := domain.FlagKind(flag)
		s.metrics.ComplianceFlagged(kind)
		s.enqueue(ctx, actor, domain.EventComplianceFlagged, msg.JobID, map[string]any{
			"job_id":     msg.JobID,
			"message_id": msg.ID,
			"flag":       flag,
			"kind":       kind,
		})
		s.broadcast(ctx, msg.JobID, realtimeEvent{Type: "compliance_flag", Flag: flag})
		s.logger.WarnContext(ctx, "compliance flag raised",
			"operation", "post_message",
			"outcome", "flagged",
			"job_id", msg.JobID,
			"message_id", msg.ID,
			"flag_kind", kind,
		)
	}
	return msg, nil
}

func (s *Service) ListMessages(ctx context.Context, jobID string) ([]domain.ChatMessage, error) {
	return s.jobs.Messages(ctx, jobID)
}

// ComplianceFlags returns the job's flags in the order they were raised.
func (s *Service) ComplianceFlags(ctx context.Context, jobID string) ([]string, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return job.ComplianceFlags, nil
}

type realtimeEvent struct {
	Type    string              `json:"type"`
	Message *domain.ChatMessage `json:"message,omitempty"`
	Flag    string              `json:"flag,omitempty"`
}

// broadcast is best effort. The message is already stored when it runs.
func (s *Service) broadcast(ctx context.Context, jobID string, evt realtimeEvent) {
	if s.broadcaster == nil {
		return
	}
	payload, err := json.Marshal(evt)
	if err == nil {
		err = s.broadcaster.Broadcast(ctx, jobID, payload)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "realtime broadcast failed",
			"operation", "broadcast",
			"outcome", "failure",
			"job_id", jobID,
			"error", err,
		)
	}
}
