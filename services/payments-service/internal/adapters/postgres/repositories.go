// Package postgres backs the payments outbox and idempotency keys with
// Postgres. Ledger state stays in memory.
package postgres

import (
	"context"
	"embed"

	platformpg "github.com/prrathnayake/conveyancers-marketplace/platform/postgres"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const (
	outboxTable      = "payments_outbox"
	idempotencyTable = "payments_idempotency"
)

type Repositories struct {
	Outbox      *platformpg.OutboxRepository
	Idempotency *IdempotencyRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Outbox:      platformpg.NewOutboxRepository(db, outboxTable),
		Idempotency: &IdempotencyRepository{db: db},
	}
}

func Migrate(ctx context.Context, db *gorm.DB) error {
	return platformpg.RunMigrations(ctx, db, migrationFS, "migrations")
}
