package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestJobCounters(t *testing.T) {
	j := NewJobs(prometheus.NewRegistry())
	j.JobCreated()
	j.MessagePosted()
	j.MessagePosted()
	j.ContactUnlocked()
	j.ComplianceFlagged("off_platform_hint")
	j.ComplianceFlagged("off_platform_hint")
	j.ComplianceFlagged("contact_coordinates")

	if got := testutil.ToFloat64(j.messages); got != 2 {
		t.Fatalf("messages = %v", got)
	}
	if got := testutil.ToFloat64(j.flags.WithLabelValues("off_platform_hint")); got != 2 {
		t.Fatalf("off platform flags = %v", got)
	}
	if got := testutil.CollectAndCount(j.flags); got != 2 {
		t.Fatalf("flag series = %d", got)
	}
	if testutil.ToFloat64(j.created) != 1 || testutil.ToFloat64(j.unlocks) != 1 {
		t.Fatalf("created/unlocks not counted")
	}
}
