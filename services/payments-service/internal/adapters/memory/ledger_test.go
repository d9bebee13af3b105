package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/platform/idgen"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
)

var fixedNow = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func newTestLedger() *Ledger {
	return NewLedger(idgen.NewSequence(), func() time.Time { return fixedNow })
}

func TestCheckoutThenRefundIsRejected(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger()

	hold, err := ledger.CreateHold(ctx, domain.NewHold{JobID: "job_1", MilestoneID: "ms_1", Currency: "AUD", AmountCents: 500000, Reference: "ref"})
	if err != nil {
		t.Fatalf("CreateHold: %v", err)
	}
	if hold.Status != domain.PaymentStatusHeld || hold.AmountCents != 500000 || hold.ID != "hold_000001" {
		t.Fatalf("unexpected hold %+v", hold)
	}

	processed, _ := time.Parse(time.RFC3339, "2024-03-01T00:00:00Z")
	receipt, err := ledger.Checkout(ctx, domain.CheckoutRequest{PaymentID: hold.ID, Method: "card", ServiceFeeRate: 0.015, ProcessedAt: processed})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if receipt.ServiceFeeCents != 7500 || receipt.TotalCents != 507500 {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	released, _ := ledger.Get(ctx, hold.ID)
	if released.Status != domain.PaymentStatusReleased {
		t.Fatalf("expected released, got %s", released.Status)
	}

	_, err = ledger.Refund(ctx, hold.ID, processed.Add(time.Hour))
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	after, _ := ledger.Get(ctx, hold.ID)
	if after.Status != domain.PaymentStatusReleased || after.RefundedAt != nil {
		t.Fatalf("payment must remain released, got %+v", after)
	}

	byPayment, err := ledger.GetCheckoutForPayment(ctx, hold.ID)
	if err != nil || byPayment.ID != receipt.ID {
		t.Fatalf("checkout index by payment broken: %+v %v", byPayment, err)
	}
	if _, err := ledger.GetCheckout(ctx, receipt.ID); err != nil {
		t.Fatalf("GetCheckout: %v", err)
	}
	if _, err := ledger.GetCheckout(ctx, "chk_missing"); domain.CodeOf(err, "") != "checkout_not_found" {
		t.Fatalf("expected checkout_not_found, got %v", err)
	}
}

func TestLedgerNotFound(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger()
	checks := []func() error{
		func() error { _, err := ledger.Get(ctx, "missing"); return err },
		func() error { _, err := ledger.Release(ctx, "missing", fixedNow); return err },
		func() error { _, err := ledger.Refund(ctx, "missing", fixedNow); return err },
		func() error {
			_, err := ledger.Checkout(ctx, domain.CheckoutRequest{PaymentID: "missing", ProcessedAt: fixedNow})
			return err
		},
	}
	for i, check := range checks {
		err := check()
		if !errors.Is(err, domain.ErrNotFound) || domain.CodeOf(err, "") != "payment_not_found" {
			t.Fatalf("check %d: expected payment_not_found, got %v", i, err)
		}
	}
}

func TestPayoutRequiresReleaseAndKeepsHistory(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger()
	hold, _ := ledger.CreateHold(ctx, domain.NewHold{JobID: "job_1", MilestoneID: "ms_1", Currency: "AUD", AmountCents: 1000})
	instruction := domain.PayoutInstruction{PaymentID: hold.ID, AccountName: "Trust", AccountNumber: "12345678", BSB: "062-000", ProcessedAt: fixedNow}

	if _, err := ledger.RecordPayout(ctx, instruction); !errors.Is(err, domain.ErrInvalidTransition) || domain.CodeOf(err, "") != "payout_not_available" {
		t.Fatalf("expected payout_not_available, got %v", err)
	}
	if _, err := ledger.LatestPayout(ctx, hold.ID); domain.CodeOf(err, "") != "payout_not_found" {
		t.Fatalf("expected payout_not_found, got %v", err)
	}

	if _, err := ledger.Release(ctx, hold.ID, fixedNow); err != nil {
		t.Fatalf("Release: %v", err)
	}
	first, err := ledger.RecordPayout(ctx, instruction)
	if err != nil {
		t.Fatalf("RecordPayout: %v", err)
	}
	if first.Reference != domain.DefaultPayoutReference {
		t.Fatalf("expected default reference, got %q", first.Reference)
	}
	instruction.Reference = "CORRECTED"
	second, err := ledger.RecordPayout(ctx, instruction)
	if err != nil {
		t.Fatalf("second RecordPayout: %v", err)
	}
	latest, _ := ledger.LatestPayout(ctx, hold.ID)
	if latest.ID != second.ID || latest.Reference != "CORRECTED" {
		t.Fatalf("latest payout should be the newest, got %+v", latest)
	}
	history, _ := ledger.Payouts(ctx, hold.ID)
	if len(history) != 2 || history[0].ID != first.ID {
		t.Fatalf("payout history lost entries: %+v", history)
	}
}

func TestConcurrentCheckoutSucceedsOnce(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(idgen.NewUUID(), nil)
	hold, _ := ledger.CreateHold(ctx, domain.NewHold{JobID: "job_1", MilestoneID: "ms_1", Currency: "AUD", AmountCents: 10000})

	const attempts = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes, conflicts := 0, 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Checkout(ctx, domain.CheckoutRequest{PaymentID: hold.ID, Method: "card", ServiceFeeRate: 0.018, ProcessedAt: time.Now()})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrInvalidTransition):
				conflicts++
			default:
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()
	if successes != 1 || conflicts != attempts-1 {
		t.Fatalf("expected exactly one checkout, got %d successes and %d conflicts", successes, conflicts)
	}
	receipts, _ := ledger.Receipts(ctx)
	if len(receipts) != 1 {
		t.Fatalf("expected one receipt, got %d", len(receipts))
	}
}

func TestConcurrentReleaseAndRefundKeepInvariant(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(idgen.NewUUID(), nil)
	var ids []string
	for i := 0; i < 50; i++ {
		hold, _ := ledger.CreateHold(ctx, domain.NewHold{JobID: "job", MilestoneID: "ms", Currency: "AUD", AmountCents: 100})
		ids = append(ids, hold.ID)
	}
	var wg sync.WaitGroup
	for _, id := range ids {
		for _, refund := range []bool{false, true} {
			wg.Add(1)
			go func(id string, refund bool) {
				defer wg.Done()
				if refund {
					_, _ = ledger.Refund(ctx, id, time.Now())
				} else {
					_, _ = ledger.Release(ctx, id, time.Now())
				}
			}(id, refund)
		}
	}
	wg.Wait()
	payments, _ := ledger.List(ctx)
	for _, p := range payments {
		switch p.Status {
		case domain.PaymentStatusReleased:
			if p.ReleasedAt == nil || p.RefundedAt != nil {
				t.Fatalf("released payment has wrong timestamps: %+v", p)
			}
		case domain.PaymentStatusRefunded:
			if p.RefundedAt == nil || p.ReleasedAt != nil {
				t.Fatalf("refunded payment has wrong timestamps: %+v", p)
			}
		default:
			t.Fatalf("payment should have left held: %+v", p)
		}
	}
}

func TestListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger()
	hold, _ := ledger.CreateHold(ctx, domain.NewHold{JobID: "job", MilestoneID: "ms", Currency: "AUD", AmountCents: 100})
	released, _ := ledger.Release(ctx, hold.ID, fixedNow)
	*released.ReleasedAt = fixedNow.Add(24 * time.Hour)
	again, _ := ledger.Get(ctx, hold.ID)
	if !again.ReleasedAt.Equal(fixedNow) {
		t.Fatalf("callers must not be able to mutate stored timestamps")
	}
}
