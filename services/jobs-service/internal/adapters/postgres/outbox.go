// Package postgres keeps the jobs outbox in Postgres when a database is
// configured.
package postgres

import (
	"context"
	"embed"

	platformpg "github.com/prrathnayake/conveyancers-marketplace/platform/postgres"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const outboxTable = "jobs_outbox"

func NewOutbox(db *gorm.DB) *platformpg.OutboxRepository {
	return platformpg.NewOutboxRepository(db, outboxTable)
}

func Migrate(ctx context.Context, db *gorm.DB) error {
	return platformpg.RunMigrations(ctx, db, migrationFS, "migrations")
}
