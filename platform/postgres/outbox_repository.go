package postgres

import (
	"context"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/platform/events"
	"gorm.io/gorm"
)

type outboxModel struct {
	RecordID     string     `gorm:"column:record_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      string     `gorm:"column:payload"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
	RetryCount   int        `gorm:"column:retry_count"`
	LastError    *string    `gorm:"column:last_error"`
	LastErrorAt  *time.Time `gorm:"column:last_error_at"`
}

// OutboxRepository persists outbox records in a per-service table with the
// columns of outboxModel.
type OutboxRepository struct {
	db    *gorm.DB
	table string
}

func NewOutboxRepository(db *gorm.DB, table string) *OutboxRepository {
	return &OutboxRepository{db: db, table: table}
}

func (r *OutboxRepository) Enqueue(ctx context.Context, rec events.Record) error {
	row := outboxModel{
		RecordID:     rec.RecordID,
		EventType:    rec.EventType,
		PartitionKey: rec.PartitionKey,
		Payload:      string(rec.Payload),
		CreatedAt:    rec.CreatedAt,
	}
	return r.db.WithContext(ctx).Table(r.table).Create(&row).Error
}

func (r *OutboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]events.Record, error) {
	var rows []outboxModel
	if err := r.db.WithContext(ctx).Table(r.table).Where("published_at IS NULL").Order("created_at asc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]events.Record, 0, len(rows))
	for _, row := range rows {
		rec := events.Record{
			RecordID: row.RecordID, EventType: row.EventType, PartitionKey: row.PartitionKey,
			Payload: []byte(row.Payload), CreatedAt: row.CreatedAt, PublishedAt: row.PublishedAt, RetryCount: row.RetryCount,
		}
		if row.LastError != nil {
			rec.LastError = *row.LastError
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, recordID string, at time.Time) error {
	return r.db.WithContext(ctx).Table(r.table).Where("record_id = ?", recordID).Update("published_at", at).Error
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, recordID, errMsg string, at time.Time) error {
	return r.db.WithContext(ctx).Table(r.table).Where("record_id = ?", recordID).Updates(map[string]any{
		"retry_count":   gorm.Expr("retry_count + 1"),
		"last_error":    errMsg,
		"last_error_at": at,
	}).Error
}
