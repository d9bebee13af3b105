package application

import (
	"log/slog"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/services/jobs-service/internal/domain"
	"github.com/prrathnayake/conveyancers-marketplace/services/jobs-service/internal/ports"
)

const (
	DefaultListLimit = 25
	MaxListLimit     = 100
)

type Config struct {
	ServiceName  string
	ContactScope string
	TokenSecret  string
}

type Actor struct {
	SubjectID string
	Role      string
	RequestID string
}

// Privileged reports whether the actor may see full contacts and flags.
func (a Actor) Privileged() bool {
	return a.Role == "admin" || a.Role == "finance_admin"
}

type CreateJobInput struct {
	CustomerID    string
	ConveyancerID string
	State         string
	PropertyType  string
	Status        string
	Contacts      domain.ContactOverrides
}

type PostMessageInput struct {
	Sender string
	Body   string
}

type MilestoneInput struct {
	Name        string
	AmountCents int64
	DueDate     string
}

type Service struct {
	cfg         Config
	logger      *slog.Logger
	jobs        ports.JobStore
	outbox      ports.Outbox
	broadcaster ports.Broadcaster
	metrics     ports.JobMetrics
	nowFn       func() time.Time
}

type Dependencies struct {
	Config      Config
	Logger      *slog.Logger
	Jobs        ports.JobStore
	Outbox      ports.Outbox
	Broadcaster ports.Broadcaster
	Metrics     ports.JobMetrics
	Clock       func() time.Time
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "jobs-service"
	}
	if cfg.ContactScope == "" {
		cfg.ContactScope = "contact_unlock"
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	nowFn := deps.Clock
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{
		cfg:         cfg,
		logger:      logger.With("module", "application", "layer", "application"),
		jobs:        deps.Jobs,
		outbox:      deps.Outbox,
		broadcaster: deps.Broadcaster,
		metrics:     metrics,
		nowFn:       nowFn,
	}
}

// ClampLimit maps a requested page size into [1, MaxListLimit].
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

type noopMetrics struct{}

func (noopMetrics) JobCreated()              {}
func (noopMetrics) ContactUnlocked()         {}
func (noopMetrics) MessagePosted()           {}
func (noopMetrics) ComplianceFlagged(string) {}
