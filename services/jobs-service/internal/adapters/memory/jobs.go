package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/services/jobs-service/internal/domain"
	"github.com/prrathnayake/conveyancers-marketplace/services/jobs-service/internal/ports"
)

// JobStore keeps jobs, chat and milestones behind one mutex.
type JobStore struct {
	mu         sync.Mutex
	ids        ports.IDGenerator
	nowFn      func() time.Time
	jobs       map[string]*domain.Job
	order      []string
	messages   map[string][]domain.ChatMessage
	milestones map[string][]domain.Milestone
}

func NewJobStore(ids ports.IDGenerator, nowFn func() time.Time) *JobStore {
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &JobStore{
		ids:        ids,
		nowFn:      nowFn,
		jobs:       map[string]*domain.Job{},
		messages:   map[string][]domain.ChatMessage{},
		milestones: map[string][]domain.Milestone{},
	}
}

func (s *JobStore) Create(_ context.Context, input domain.NewJob) (domain.Job, error) {
	input, err := input.Normalize()
	if err != nil {
		return domain.Job{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	job := domain.BuildJob(s.ids.NewID("job_"), input, s.nowFn())
	s.jobs[job.ID] = &job
	s.order = append(s.order, job.ID)
	return job.Clone(), nil
}

func (s *JobStore) Get(_ context.Context, jobID string) (domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[strings.TrimSpace(jobID)]
	if !ok {
		return domain.Job{}, jobNotFound(jobID)
	}
	return job.Clone(), nil
}

// ListForAccount returns the newest jobs first.
func (s *JobStore) ListForAccount(_ context.Context, accountID string, limit int) ([]domain.Job, error) {
	accountID = strings.TrimSpace(accountID)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Job, 0)
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		job := s.jobs[s.order[i]]
		if job.Involves(accountID) {
			out = append(out, job.Clone())
		}
	}
	return out, nil
}

func (s *JobStore) Unlock(_ context.Context, jobID, role string, at time.Time) (domain.Job, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[strings.TrimSpace(jobID)]
	if !ok {
		return domain.Job{}, false, jobNotFound(jobID)
	}
	changed := job.Contact.Unlock(role, at)
	return job.Clone(), changed, nil
}

func (s *JobStore) AddMessage(_ context.Context, jobID, sender, body string, findings domain.Findings) (domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[strings.TrimSpace(jobID)]
	if !ok {
		return domain.ChatMessage{}, jobNotFound(jobID)
	}
	msg := domain.ChatMessage{
		ID:        s.ids.NewID("msg_"),
		JobID:     job.ID,
		Sender:    sender,
		Body:      body,
		CreatedAt: s.nowFn().UTC(),
	}
	msg.Flags = findings.Flags(msg.ID, job.Contact.Unlocked)
	job.ComplianceFlags = append(job.ComplianceFlags, msg.Flags...)
	s.messages[job.ID] = append(s.messages[job.ID], msg)
	return cloneMessage(msg), nil
}

// Messages returns the chat oldest first.
func (s *JobStore) Messages(_ context.Context, jobID string) ([]domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobID = strings.TrimSpace(jobID)
	if _, ok := s.jobs[jobID]; !ok {
		return nil, jobNotFound(jobID)
	}
	out := make([]domain.ChatMessage, 0, len(s.messages[jobID]))
	for _, msg := range s.messages[jobID] {
		out = append(out, cloneMessage(msg))
	}
	return out, nil
}

func (s *JobStore) AddMilestone(_ context.Context, jobID string, input domain.NewMilestone) (domain.Milestone, error) {
	input, err := input.Normalize()
	if err != nil {
		return domain.Milestone{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[strings.TrimSpace(jobID)]
	if !ok {
		return domain.Milestone{}, jobNotFound(jobID)
	}
	m := domain.Milestone{
		ID:          s.ids.NewID("ms_"),
		JobID:       job.ID,
		Name:        input.Name,
		AmountCents: input.AmountCents,
		DueDate:     input.DueDate,
		Status:      domain.MilestonePending,
		CreatedAt:   s.nowFn().UTC(),
	}
	s.milestones[job.ID] = append(s.milestones[job.ID], m)
	return m, nil
}

// Milestones returns the job's milestones ordered by due date.
func (s *JobStore) Milestones(_ context.Context, jobID string) ([]domain.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobID = strings.TrimSpace(jobID)
	if _, ok := s.jobs[jobID]; !ok {
		return nil, jobNotFound(jobID)
	}
	out := append([]domain.Milestone{}, s.milestones[jobID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate < out[j].DueDate })
	return out, nil
}

func jobNotFound(jobID string) error {
	return domain.NotFound("job_not_found", "job "+strings.TrimSpace(jobID)+" not found")
}

func cloneMessage(msg domain.ChatMessage) domain.ChatMessage {
	msg.Flags = append([]string(nil), msg.Flags...)
	return msg
}
