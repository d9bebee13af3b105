package application

import (
	"context"
	"strings"

	"github.com/prrathnayake/conveyancers-marketplace/services/jobs-service/internal/domain"
)

func (s *Service) CreateJob(ctx context.Context, actor Actor, input CreateJobInput) (domain.JobView, error) {
	job, err := s.jobs.Create(ctx, domain.NewJob{
		CustomerID:    input.CustomerID,
		ConveyancerID: input.ConveyancerID,
		State:         input.State,
		PropertyType:  input.PropertyType,
		Status:        input.Status,
		Contacts:      input.Contacts,
	})
	if err != nil {
		return domain.JobView{}, err
	}
	s.metrics.JobCreated()
	s.enqueue(ctx, actor, domain.EventJobCreated, job.ID, map[string]any{
		"job_id":         job.ID,
		"customer_id":    job.CustomerID,
		"conveyancer_id": job.ConveyancerID,
		"state":          job.State,
		"status":         job.Status,
	})
	s.logger.InfoContext(ctx, "job created",
		"operation", "create_job",
		"outcome", "success",
		"job_id", job.ID,
	)
	return job.View(actor.Privileged()), nil
}

func (s *Service) GetJob(ctx context.Context, actor Actor, jobID string) (domain.JobView, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return domain.JobView{}, err
	}
	return job.View(actor.Privileged()), nil
}

func (s *Service) ListJobs(ctx context.Context, actor Actor, accountID string, limit int) ([]domain.JobView, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, domain.Invalid("missing_account_id", "account_id is required")
	}
	jobs, err := s.jobs.ListForAccount(ctx, accountID, ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	out := make([]domain.JobView, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, job.View(actor.Privileged()))
	}
	return out, nil
}

func (s *Service) AddMilestone(ctx context.Context, actor Actor, jobID string, input MilestoneInput) (domain.Milestone, error) {
	m, err := s.jobs.AddMilestone(ctx, jobID, domain.NewMilestone{
		Name:        input.Name,
		AmountCents: input.AmountCents,
		DueDate:     input.DueDate,
	})
	if err != nil {
		return domain.Milestone{}, err
	}
	s.enqueue(ctx, actor, domain.EventMilestoneCreated, m.JobID, map[string]any{
		"job_id":       m.JobID,
		"milestone_id": m.ID,
		"amount_cents": m.AmountCents,
		"due_date":     m.DueDate,
	})
	return m, nil
}

func (s *Service) ListMilestones(ctx context.Context, jobID string) ([]domain.Milestone, error) {
	return s.jobs.Milestones(ctx, jobID)
}
