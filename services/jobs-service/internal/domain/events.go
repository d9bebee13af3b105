package domain

const (
	EventJobCreated        = "job.created"
	EventContactUnlocked   = "job.contact_unlocked"
	EventMessagePosted     = "job.message_posted"
	EventComplianceFlagged = "job.compliance_flagged"
	EventMilestoneCreated  = "job.milestone_created"
)

// EventPartitionKeyPath names the envelope field every jobs event is keyed by.
const EventPartitionKeyPath = "data.job_id"
