package domain

import (
	"errors"
	"testing"
	"time"
)

func assertTimestampsMatchStatus(t *testing.T, p PaymentRecord) {
	t.Helper()
	switch p.Status {
	case PaymentStatusHeld:
		if p.ReleasedAt != nil || p.RefundedAt != nil {
			t.Fatalf("held payment carries timestamps: %+v", p)
		}
	case PaymentStatusReleased:
		if p.ReleasedAt == nil || p.RefundedAt != nil {
			t.Fatalf("released payment timestamps mismatch: %+v", p)
		}
	case PaymentStatusRefunded:
		if p.RefundedAt == nil || p.ReleasedAt != nil {
			t.Fatalf("refunded payment timestamps mismatch: %+v", p)
		}
	}
}

func TestNewHoldNormalize(t *testing.T) {
	hold, err := NewHold{JobID: "job_1", MilestoneID: "ms_1", Currency: "aud", AmountCents: 500000}.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if hold.Currency != "AUD" || hold.Reference != "job_1-ms_1" {
		t.Fatalf("unexpected hold %+v", hold)
	}

	cases := map[string]NewHold{
		"missing_required_fields": {MilestoneID: "ms_1", Currency: "AUD", AmountCents: 1},
		"invalid_amount":          {JobID: "job_1", MilestoneID: "ms_1", Currency: "AUD", AmountCents: 0},
		"invalid_currency":        {JobID: "job_1", MilestoneID: "ms_1", Currency: "AUDX", AmountCents: 1},
	}
	for code, in := range cases {
		_, err := in.Normalize()
		if !errors.Is(err, ErrInvalidInput) || CodeOf(err, "") != code {
			t.Fatalf("expected %s, got %v", code, err)
		}
	}
}

func TestReleaseAndRefundGuards(t *testing.T) {
	t1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	p := PaymentRecord{ID: "hold_1", Status: PaymentStatusHeld}
	if err := p.Release(t1); err != nil {
		t.Fatalf("Release: %v", err)
	}
	assertTimestampsMatchStatus(t, p)
	if err := p.Release(t2); err != nil {
		t.Fatalf("re-release should restamp: %v", err)
	}
	if !p.ReleasedAt.Equal(t2) {
		t.Fatalf("expected released_at restamped to %v, got %v", t2, p.ReleasedAt)
	}
	if err := p.Refund(t2); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("refund after release must fail with invalid transition, got %v", err)
	}
	if p.Status != PaymentStatusReleased {
		t.Fatalf("failed refund must not change status")
	}

	q := PaymentRecord{ID: "hold_2", Status: PaymentStatusHeld}
	if err := q.Refund(t1); err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if err := q.Refund(t2); err != nil {
		t.Fatalf("refund is repeatable: %v", err)
	}
	assertTimestampsMatchStatus(t, q)
	if err := q.Release(t2); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("release after refund must fail, got %v", err)
	}
	assertTimestampsMatchStatus(t, q)
}

func TestCheckoutPricesFeeAndReleases(t *testing.T) {
	processed := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	p := PaymentRecord{ID: "hold_1", JobID: "job_1", Currency: "AUD", AmountCents: 500000, Reference: "ref", Status: PaymentStatusHeld}
	receipt, err := p.Checkout("chk_1", CheckoutRequest{PaymentID: p.ID, Method: "card", ServiceFeeRate: 0.015, ProcessedAt: processed})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if receipt.ServiceFeeCents != 7500 || receipt.TotalCents != 507500 || receipt.HoldAmountCents != 500000 {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	if p.Status != PaymentStatusReleased || !p.ReleasedAt.Equal(processed) {
		t.Fatalf("payment not released: %+v", p)
	}
	assertTimestampsMatchStatus(t, p)

	_, err = p.Checkout("chk_2", CheckoutRequest{PaymentID: p.ID, Method: "card", ServiceFeeRate: 0.015, ProcessedAt: processed})
	if !errors.Is(err, ErrInvalidTransition) || CodeOf(err, "") != "hold_not_available" {
		t.Fatalf("second checkout must fail with hold_not_available, got %v", err)
	}
}

func TestCheckoutConservation(t *testing.T) {
	rates := []float64{0, 0.012, 0.015, 0.018, 0.0333, 0.25}
	for amount := Cents(1); amount < 100000; amount = amount*3 + 7 {
		for _, rate := range rates {
			p := PaymentRecord{ID: "hold", AmountCents: amount, Status: PaymentStatusHeld}
			receipt, err := p.Checkout("chk", CheckoutRequest{ServiceFeeRate: rate, ProcessedAt: time.Unix(0, 0)})
			if err != nil {
				t.Fatalf("Checkout: %v", err)
			}
			if receipt.TotalCents != receipt.HoldAmountCents+receipt.ServiceFeeCents {
				t.Fatalf("total mismatch %+v", receipt)
			}
			if receipt.ServiceFeeCents != ApplyRate(amount, rate) {
				t.Fatalf("fee mismatch %+v", receipt)
			}
		}
	}
}

func TestPayoutInstructionNormalize(t *testing.T) {
	in, err := PayoutInstruction{PaymentID: "hold_1", AccountName: "Trust", AccountNumber: "12345678", BSB: "062-000", ProcessedAt: time.Now()}.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if in.Reference != DefaultPayoutReference {
		t.Fatalf("expected default reference, got %q", in.Reference)
	}
	if _, err := (PayoutInstruction{PaymentID: "hold_1", AccountName: "Trust"}).Normalize(); CodeOf(err, "") != "missing_required_fields" {
		t.Fatalf("expected missing_required_fields, got %v", err)
	}
}
