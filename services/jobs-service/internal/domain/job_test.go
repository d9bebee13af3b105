package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewJobNormalize(t *testing.T) {
	j, err := NewJob{CustomerID: " cust_1 ", ConveyancerID: "conv_1", State: "nsw"}.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if j.CustomerID != "cust_1" || j.State != "NSW" || j.Status != DefaultJobStatus {
		t.Fatalf("unexpected job %+v", j)
	}
	if _, err := (NewJob{CustomerID: "cust_1"}).Normalize(); CodeOf(err, "") != "missing_required_fields" {
		t.Fatalf("expected missing_required_fields, got %v", err)
	}
}

func TestJobViewHidesFlags(t *testing.T) {
	j := BuildJob("job_1", NewJob{CustomerID: "c", ConveyancerID: "v", Status: DefaultJobStatus}, time.Now())
	j.ComplianceFlags = []string{"off_platform_hint:msg_1"}
	if v := j.View(false); v.ComplianceFlags != nil {
		t.Fatalf("flags should be hidden")
	}
	if v := j.View(true); len(v.ComplianceFlags) != 1 {
		t.Fatalf("flags should be shown")
	}
	if !j.Involves("c") || !j.Involves("v") || j.Involves("x") || j.Involves("") {
		t.Fatalf("unexpected Involves results")
	}
}

func TestJobCloneIsIndependent(t *testing.T) {
	j := BuildJob("job_1", NewJob{CustomerID: "c", ConveyancerID: "v"}, time.Now())
	j.Contact.Unlock("buyer", time.Now())
	j.ComplianceFlags = []string{"a"}
	c := j.Clone()
	c.ComplianceFlags[0] = "b"
	*c.Contact.UnlockedAt = time.Time{}
	if j.ComplianceFlags[0] != "a" || j.Contact.UnlockedAt.IsZero() {
		t.Fatalf("clone should not share state with the original")
	}
}

func TestValidateMessage(t *testing.T) {
	if _, _, err := ValidateMessage("", "hi"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, _, err := ValidateMessage("buyer", strings.Repeat("x", MaxMessageLength+1)); CodeOf(err, "") != "message_too_long" {
		t.Fatalf("expected message_too_long, got %v", err)
	}
	sender, body, err := ValidateMessage(" buyer ", " hello ")
	if err != nil || sender != "buyer" || body != "hello" {
		t.Fatalf("unexpected %q %q %v", sender, body, err)
	}
}

func TestNewMilestoneNormalize(t *testing.T) {
	cases := []struct {
		in   NewMilestone
		code string
	}{
		{NewMilestone{Name: "Deposit", AmountCents: 100, DueDate: "2024-04-01"}, ""},
		{NewMilestone{AmountCents: 100, DueDate: "2024-04-01"}, "missing_required_fields"},
		{NewMilestone{Name: "Deposit", DueDate: "2024-04-01"}, "invalid_amount"},
		{NewMilestone{Name: "Deposit", AmountCents: 100, DueDate: "01/04/2024"}, "invalid_due_date"},
	}
	for _, tc := range cases {
		_, err := tc.in.Normalize()
		if CodeOf(err, "") != tc.code {
			t.Fatalf("Normalize(%+v) = %v, want %q", tc.in, err, tc.code)
		}
	}
}
