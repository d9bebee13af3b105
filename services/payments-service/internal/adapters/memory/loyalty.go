package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
)

// LoyaltyEngine counts distinct completed jobs per conveyancer.
type LoyaltyEngine struct {
	mu        sync.Mutex
	schedule  domain.TierSchedule
	completed map[string]map[string]struct{}
}

func NewLoyaltyEngine(schedule domain.TierSchedule) *LoyaltyEngine {
	return &LoyaltyEngine{schedule: schedule, completed: map[string]map[string]struct{}{}}
}

func (e *LoyaltyEngine) ResolveRate(_ context.Context, accountID string) float64 {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return e.schedule.BaseRate()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.schedule.ForCount(len(e.completed[accountID])).FeeRate
}

// RecordCheckout credits jobID once. It reports whether the credit was new.
func (e *LoyaltyEngine) RecordCheckout(_ context.Context, accountID, jobID string) bool {
	accountID = strings.TrimSpace(accountID)
	jobID = strings.TrimSpace(jobID)
	if accountID == "" || jobID == "" {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	jobs, ok := e.completed[accountID]
	if !ok {
		jobs = map[string]struct{}{}
		e.completed[accountID] = jobs
	}
	if _, seen := jobs[jobID]; seen {
		return false
	}
	jobs[jobID] = struct{}{}
	return true
}

func (e *LoyaltyEngine) DescribeMember(_ context.Context, accountID string) domain.MemberStatus {
	accountID = strings.TrimSpace(accountID)
	e.mu.Lock()
	count := len(e.completed[accountID])
	e.mu.Unlock()
	return e.schedule.Describe(accountID, count)
}

func (e *LoyaltyEngine) Summaries(_ context.Context) domain.LoyaltySummary {
	e.mu.Lock()
	counts := make(map[string]int, len(e.completed))
	for accountID, jobs := range e.completed {
		counts[accountID] = len(jobs)
	}
	e.mu.Unlock()
	return e.schedule.Summarize(counts)
}

func (e *LoyaltyEngine) Schedule() domain.TierSchedule { return e.schedule }
