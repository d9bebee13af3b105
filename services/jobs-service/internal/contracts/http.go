package contracts

import "github.com/prrathnayake/conveyancers-marketplace/services/jobs-service/internal/domain"

type CreateJobRequest struct {
	CustomerID    string                  `json:"customer_id" validate:"required"`
	ConveyancerID string                  `json:"conveyancer_id" validate:"required"`
	State         string                  `json:"state" validate:"omitempty,min=2,max=3"`
	PropertyType  string                  `json:"property_type,omitempty"`
	Status        string                  `json:"status,omitempty"`
	Contacts      domain.ContactOverrides `json:"contacts"`
}

type UnlockContactRequest struct {
	Token string `json:"token" validate:"required"`
}

type PostMessageRequest struct {
	Sender string `json:"sender" validate:"required"`
	Body   string `json:"body" validate:"required"`
}

type MilestoneRequest struct {
	Name        string `json:"name" validate:"required"`
	AmountCents int64  `json:"amount_cents"`
	DueDate     string `json:"due_date" validate:"required"`
}

type ComplianceResponse struct {
	JobID string   `json:"job_id"`
	Flags []string `json:"flags"`
}

type HealthResponse struct {
	Service string `json:"service"`
	Status  string `json:"status"`
}
