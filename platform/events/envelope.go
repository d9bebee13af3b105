// Package events implements the transactional outbox used by the services:
// domain code enqueues envelopes, the OutboxWorker relays them to a Publisher.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const SchemaVersion = "v1"

type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    string          `json:"schema_version"`
	Data             json.RawMessage `json:"data"`
}

// Record is an envelope as stored in an outbox.
type Record struct {
	RecordID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
	PublishedAt  *time.Time
	RetryCount   int
	LastError    string
}

type Outbox interface {
	Enqueue(ctx context.Context, rec Record) error
	FetchUnpublished(ctx context.Context, limit int) ([]Record, error)
	MarkPublished(ctx context.Context, recordID string, at time.Time) error
	MarkFailed(ctx context.Context, recordID, errMsg string, at time.Time) error
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error
}

// NewRecord wraps data in an envelope and serialises it for the outbox.
func NewRecord(source, eventType, partitionKeyPath, partitionKey, traceID string, data any, at time.Time) (Record, error) {
	if strings.TrimSpace(eventType) == "" || strings.TrimSpace(partitionKey) == "" {
		return Record{}, fmt.Errorf("event type and partition key are required")
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Record{}, fmt.Errorf("marshal %s data: %w", eventType, err)
	}
	env := Envelope{
		EventID:          uuid.NewString(),
		EventType:        eventType,
		OccurredAt:       at.UTC(),
		PartitionKeyPath: partitionKeyPath,
		PartitionKey:     partitionKey,
		SourceService:    source,
		TraceID:          traceID,
		SchemaVersion:    SchemaVersion,
		Data:             raw,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return Record{}, fmt.Errorf("marshal %s envelope: %w", eventType, err)
	}
	return Record{
		RecordID:     env.EventID,
		EventType:    eventType,
		PartitionKey: partitionKey,
		Payload:      payload,
		CreatedAt:    env.OccurredAt,
	}, nil
}
