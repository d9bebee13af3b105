package application

import (
	"context"

	"github.com/prrathnayake/conveyancers-marketplace/platform/scopedtoken"
	"github.com/prrathnayake/conveyancers-marketplace/services/jobs-service/internal/domain"
)

// GetContact reveals full details to privileged actors or once the policy
// is unlocked. Only admins see the unlock token and audit fields.
func (s *Service) GetContact(ctx context.Context, actor Actor, jobID string) (domain.ContactView, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return domain.ContactView{}, err
	}
	revealFull := actor.Privileged() || job.Contact.Unlocked
	includeInternal := actor.Role == "admin"
	token := ""
	if includeInternal {
		token = s.UnlockToken(job.ID)
	}
	return job.Contact.Project(job.ID, revealFull, includeInternal, token), nil
}

func (s *Service) UnlockToken(jobID string) string {
	return scopedtoken.Derive(s.cfg.TokenSecret, s.cfg.ContactScope, jobID)
}

// UnlockContact is idempotent: a second valid unlock keeps the first
// timestamp and emits nothing.
func (s *Service) UnlockContact(ctx context.Context, actor Actor, jobID, token string) (domain.ContactView, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return domain.ContactView{}, err
	}
	if !scopedtoken.Verify(s.cfg.TokenSecret, s.cfg.ContactScope, job.ID, token) {
		s.logger.WarnContext(ctx, "contact unlock rejected",
			"operation", "unlock_contact",
			"outcome", "denied",
			"job_id", job.ID,
		)
		return domain.ContactView{}, domain.Forbidden("invalid_unlock_token", "unlock token does not match this job")
	}
	job, changed, err := s.jobs.Unlock(ctx, job.ID, actor.Role, s.nowFn())
	if err != nil {
		return domain.ContactView{}, err
	}
	if changed {
		s.metrics.ContactUnlocked()
		s.enqueue(ctx, actor, domain.EventContactUnlocked, job.ID, map[string]any{
			"job_id":           job.ID,
			"unlocked_at":      job.Contact.UnlockedAt,
			"unlocked_by_role": job.Contact.UnlockedByRole,
		})
		s.logger.InfoContext(ctx, "contact unlocked",
			"operation", "unlock_contact",
			"outcome", "success",
			"job_id", job.ID,
		)
	}
	return job.Contact.Project(job.ID, true, actor.Role == "admin", ""), nil
}
