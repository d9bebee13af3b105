package idgen

import (
	"strings"
	"sync"
	"testing"
)

func TestGeneratorsAreCollisionFreeUnderConcurrency(t *testing.T) {
	sf, err := NewSnowflake(1)
	if err != nil {
		t.Fatalf("NewSnowflake: %v", err)
	}
	for name, gen := range map[string]Generator{"uuid": NewUUID(), "snowflake": sf, "sequence": NewSequence()} {
		gen := gen
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			const workers, perWorker = 8, 250
			var mu sync.Mutex
			seen := make(map[string]struct{}, workers*perWorker)
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < perWorker; j++ {
						id := gen.NewID("hold_")
						mu.Lock()
						seen[id] = struct{}{}
						mu.Unlock()
					}
				}()
			}
			wg.Wait()
			if len(seen) != workers*perWorker {
				t.Fatalf("expected %d unique ids, got %d", workers*perWorker, len(seen))
			}
			for id := range seen {
				if !strings.HasPrefix(id, "hold_") {
					t.Fatalf("missing prefix on %q", id)
				}
				break
			}
		})
	}
}

func TestSequenceIsPerPrefix(t *testing.T) {
	seq := NewSequence()
	if got := seq.NewID("inv_"); got != "inv_000001" {
		t.Fatalf("unexpected %q", got)
	}
	if got := seq.NewID("chk_"); got != "chk_000001" {
		t.Fatalf("unexpected %q", got)
	}
	if got := seq.NewID("inv_"); got != "inv_000002" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestFromStrategy(t *testing.T) {
	if _, err := FromStrategy("uuid", 0); err != nil {
		t.Fatalf("uuid: %v", err)
	}
	if _, err := FromStrategy("snowflake", 3); err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	if _, err := FromStrategy("snowflake", 5000); err == nil {
		t.Fatalf("expected node range error")
	}
	if _, err := FromStrategy("random5", 0); err == nil {
		t.Fatalf("expected unknown strategy error")
	}
}
