package postgres

import (
	"strings"
	"testing"

	platformpg "github.com/prrathnayake/conveyancers-marketplace/platform/postgres"
)

func TestOutboxMigrationTargetsJobsTable(t *testing.T) {
	names, err := platformpg.MigrationNames(migrationFS, "migrations")
	if err != nil {
		t.Fatalf("MigrationNames: %v", err)
	}
	if len(names) != 1 {
		t.Fatalf("unexpected migrations %v", names)
	}
	raw, _ := migrationFS.ReadFile("migrations/" + names[0])
	if !strings.Contains(string(raw), "CREATE TABLE IF NOT EXISTS "+outboxTable) {
		t.Fatalf("migration does not create %s", outboxTable)
	}
}
