package events

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryOutbox keeps records in insertion order. It backs services started
// without a database.
type MemoryOutbox struct {
	mu      sync.Mutex
	records []Record
	index   map[string]int
}

func NewMemoryOutbox() *MemoryOutbox {
	return &MemoryOutbox{index: map[string]int{}}
}

func (o *MemoryOutbox) Enqueue(_ context.Context, rec Record) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.index[rec.RecordID]; ok {
		return fmt.Errorf("outbox record %s already enqueued", rec.RecordID)
	}
	o.index[rec.RecordID] = len(o.records)
	o.records = append(o.records, rec)
	return nil
}

func (o *MemoryOutbox) FetchUnpublished(_ context.Context, limit int) ([]Record, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Record, 0, limit)
	for _, rec := range o.records {
		if rec.PublishedAt != nil {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (o *MemoryOutbox) MarkPublished(_ context.Context, recordID string, at time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	i, ok := o.index[recordID]
	if !ok {
		return fmt.Errorf("outbox record %s not found", recordID)
	}
	published := at
	o.records[i].PublishedAt = &published
	return nil
}

func (o *MemoryOutbox) MarkFailed(_ context.Context, recordID, errMsg string, _ time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	i, ok := o.index[recordID]
	if !ok {
		return fmt.Errorf("outbox record %s not found", recordID)
	}
	o.records[i].RetryCount++
	o.records[i].LastError = errMsg
	return nil
}

// Snapshot returns every record, published or not.
func (o *MemoryOutbox) Snapshot() []Record {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Record(nil), o.records...)
}
