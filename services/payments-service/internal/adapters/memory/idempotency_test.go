package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
)

func TestIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore()
	now := time.Now()

	if err := store.Reserve(ctx, "key", "hash", now.Add(time.Hour)); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := store.Reserve(ctx, "key", "hash", now.Add(time.Hour)); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := store.Complete(ctx, "key", 201, []byte(`{"ok":true}`), now); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	rec, err := store.Get(ctx, "key", now)
	if err != nil || rec == nil || rec.ResponseCode != 201 || string(rec.ResponseBody) != `{"ok":true}` {
		t.Fatalf("unexpected record %+v %v", rec, err)
	}
	if rec, _ := store.Get(ctx, "key", now.Add(2*time.Hour)); rec != nil {
		t.Fatalf("expired record should be dropped")
	}
	if err := store.Reserve(ctx, "key", "hash", now.Add(time.Hour)); err != nil {
		t.Fatalf("expired key should be reusable: %v", err)
	}
	_ = store.Abandon(ctx, "key")
	if rec, _ := store.Get(ctx, "key", now); rec != nil {
		t.Fatalf("abandoned key should be gone")
	}
}
