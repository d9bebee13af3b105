package domain

import (
	"strings"
	"time"
)

const DefaultJobStatus = "quote_pending"

type NewJob struct {
	CustomerID    string
	ConveyancerID string
	State         string
	PropertyType  string
	Status        string
	Contacts      ContactOverrides
}

func (j NewJob) Normalize() (NewJob, error) {
	j.CustomerID = strings.TrimSpace(j.CustomerID)
	j.ConveyancerID = strings.TrimSpace(j.ConveyancerID)
	j.State = strings.ToUpper(strings.TrimSpace(j.State))
	j.PropertyType = strings.TrimSpace(j.PropertyType)
	j.Status = strings.TrimSpace(j.Status)
	if j.CustomerID == "" || j.ConveyancerID == "" {
		return NewJob{}, Invalid("missing_required_fields", "customer_id and conveyancer_id are required")
	}
	if j.Status == "" {
		j.Status = DefaultJobStatus
	}
	return j, nil
}

// Job owns its contact policy and an append-only list of compliance flags.
type Job struct {
	ID              string
	CustomerID      string
	ConveyancerID   string
	State           string
	PropertyType    string
	Status          string
	CreatedAt       time.Time
	Contact         ContactPolicy
	ComplianceFlags []string
}

func BuildJob(id string, input NewJob, now time.Time) Job {
	return Job{
		ID:            id,
		CustomerID:    input.CustomerID,
		ConveyancerID: input.ConveyancerID,
		State:         input.State,
		PropertyType:  input.PropertyType,
		Status:        input.Status,
		CreatedAt:     now.UTC(),
		Contact:       GenerateContactPolicy(id, input.ConveyancerID, input.Contacts),
	}
}

// Involves reports whether accountID is the job's customer or conveyancer.
func (j Job) Involves(accountID string) bool {
	return accountID != "" && (j.CustomerID == accountID || j.ConveyancerID == accountID)
}

func (j Job) Clone() Job {
	j.Contact = j.Contact.clone()
	j.ComplianceFlags = append([]string(nil), j.ComplianceFlags...)
	return j
}

type JobView struct {
	ID              string    `json:"id"`
	CustomerID      string    `json:"customer_id"`
	ConveyancerID   string    `json:"conveyancer_id"`
	State           string    `json:"state"`
	PropertyType    string    `json:"property_type"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	ContactUnlocked bool      `json:"contact_unlocked"`
	ComplianceFlags []string  `json:"compliance_flags,omitempty"`
}

// View hides compliance flags unless includeFlags is set.
func (j Job) View(includeFlags bool) JobView {
	v := JobView{
		ID:              j.ID,
		CustomerID:      j.CustomerID,
		ConveyancerID:   j.ConveyancerID,
		State:           j.State,
		PropertyType:    j.PropertyType,
		Status:          j.Status,
		CreatedAt:       j.CreatedAt,
		ContactUnlocked: j.Contact.Unlocked,
	}
	if includeFlags {
		v.ComplianceFlags = append([]string{}, j.ComplianceFlags...)
	}
	return v
}

type ChatMessage struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	Flags     []string  `json:"flags,omitempty"`
}

const MaxMessageLength = 4000

func ValidateMessage(sender, body string) (string, string, error) {
	sender = strings.TrimSpace(sender)
	body = strings.TrimSpace(body)
	if sender == "" || body == "" {
		return "", "", Invalid("missing_required_fields", "sender and body are required")
	}
	if len([]rune(body)) > MaxMessageLength {
		return "", "", Invalid("message_too_long", "body exceeds the message limit")
	}
	return sender, body, nil
}

const MilestonePending = "pending"

type NewMilestone struct {
	Name        string
	AmountCents int64
	DueDate     string
}

func (m NewMilestone) Normalize() (NewMilestone, error) {
	m.Name = strings.TrimSpace(m.Name)
	m.DueDate = strings.TrimSpace(m.DueDate)
	if m.Name == "" || m.DueDate == "" {
		return NewMilestone{}, Invalid("missing_required_fields", "name and due_date are required")
	}
	if m.AmountCents <= 0 {
		return NewMilestone{}, Invalid("invalid_amount", "amount_cents must be positive")
	}
	if _, err := time.Parse("2006-01-02", m.DueDate); err != nil {
		return NewMilestone{}, Invalid("invalid_due_date", "due_date must be YYYY-MM-DD")
	}
	return m, nil
}

type Milestone struct {
	ID          string    `json:"id"`
	JobID       string    `json:"job_id"`
	Name        string    `json:"name"`
	AmountCents int64     `json:"amount_cents"`
	DueDate     string    `json:"due_date"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
