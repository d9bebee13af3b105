package ports

import (
	"context"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/platform/events"
	"github.com/prrathnayake/conveyancers-marketplace/services/jobs-service/internal/domain"
)

type IDGenerator interface {
	NewID(prefix string) string
}

// JobStore serialises every mutation of a job, its messages and milestones.
type JobStore interface {
	Create(ctx context.Context, input domain.NewJob) (domain.Job, error)
	Get(ctx context.Context, jobID string) (domain.Job, error)
	ListForAccount(ctx context.Context, accountID string, limit int) ([]domain.Job, error)
	// Unlock reports whether this call performed the unlock.
	Unlock(ctx context.Context, jobID, role string, at time.Time) (domain.Job, bool, error)
	// AddMessage appends the message and the flags its findings raise against
	// the job's unlock state at the time of the append.
	AddMessage(ctx context.Context, jobID, sender, body string, findings domain.Findings) (domain.ChatMessage, error)
	Messages(ctx context.Context, jobID string) ([]domain.ChatMessage, error)
	AddMilestone(ctx context.Context, jobID string, input domain.NewMilestone) (domain.Milestone, error)
	Milestones(ctx context.Context, jobID string) ([]domain.Milestone, error)
}

type Outbox = events.Outbox

type Broadcaster = events.Broadcaster

type JobMetrics interface {
	JobCreated()
	ContactUnlocked()
	MessagePosted()
	ComplianceFlagged(kind string)
}
