// Package memory holds the process-local stores. Each store guards all of its
// maps with one mutex so every check-then-act runs atomically.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/ports"
)

type Ledger struct {
	mu    sync.Mutex
	ids   ports.IDGenerator
	nowFn func() time.Time

	payments         map[string]domain.PaymentRecord
	paymentOrder     []string
	payouts          map[string][]domain.TrustPayout
	receipts         map[string]domain.CheckoutReceipt
	receiptByPayment map[string]string
	receiptOrder     []string
}

func NewLedger(ids ports.IDGenerator, nowFn func() time.Time) *Ledger {
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &Ledger{
		ids:              ids,
		nowFn:            nowFn,
		payments:         map[string]domain.PaymentRecord{},
		payouts:          map[string][]domain.TrustPayout{},
		receipts:         map[string]domain.CheckoutReceipt{},
		receiptByPayment: map[string]string{},
	}
}

func (l *Ledger) CreateHold(_ context.Context, hold domain.NewHold) (domain.PaymentRecord, error) {
	hold, err := hold.Normalize()
	if err != nil {
		return domain.PaymentRecord{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := domain.PaymentRecord{
		ID:                   l.ids.NewID("hold_"),
		JobID:                hold.JobID,
		MilestoneID:          hold.MilestoneID,
		Currency:             hold.Currency,
		AmountCents:          hold.AmountCents,
		Reference:            hold.Reference,
		ConveyancerAccountID: hold.ConveyancerAccountID,
		Status:               domain.PaymentStatusHeld,
		CreatedAt:            l.nowFn(),
	}
	l.payments[rec.ID] = rec
	l.paymentOrder = append(l.paymentOrder, rec.ID)
	return clonePayment(rec), nil
}

func (l *Ledger) Get(_ context.Context, paymentID string) (domain.PaymentRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.payments[paymentID]
	if !ok {
		return domain.PaymentRecord{}, paymentNotFound(paymentID)
	}
	return clonePayment(rec), nil
}

func (l *Ledger) List(_ context.Context) ([]domain.PaymentRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.PaymentRecord, 0, len(l.paymentOrder))
	for _, id := range l.paymentOrder {
		out = append(out, clonePayment(l.payments[id]))
	}
	return out, nil
}

func (l *Ledger) Release(_ context.Context, paymentID string, at time.Time) (domain.PaymentRecord, error) {
	return l.mutate(paymentID, func(rec *domain.PaymentRecord) error { return rec.Release(at) })
}

func (l *Ledger) Refund(_ context.Context, paymentID string, at time.Time) (domain.PaymentRecord, error) {
	return l.mutate(paymentID, func(rec *domain.PaymentRecord) error { return rec.Refund(at) })
}

func (l *Ledger) mutate(paymentID string, apply func(*domain.PaymentRecord) error) (domain.PaymentRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.payments[paymentID]
	if !ok {
		return domain.PaymentRecord{}, paymentNotFound(paymentID)
	}
	if err := apply(&rec); err != nil {
		return domain.PaymentRecord{}, err
	}
	l.payments[paymentID] = rec
	return clonePayment(rec), nil
}

// RecordPayout appends to the payment's payout history. The latest entry is
// the payout of record.
func (l *Ledger) RecordPayout(_ context.Context, instruction domain.PayoutInstruction) (domain.TrustPayout, error) {
	instruction, err := instruction.Normalize()
	if err != nil {
		return domain.TrustPayout{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.payments[instruction.PaymentID]
	if !ok {
		return domain.TrustPayout{}, paymentNotFound(instruction.PaymentID)
	}
	if rec.Status != domain.PaymentStatusReleased {
		return domain.TrustPayout{}, domain.Transition("payout_not_available", "payouts require a released payment")
	}
	payout := domain.TrustPayout{
		ID:            l.ids.NewID("payout_"),
		PaymentID:     instruction.PaymentID,
		AccountName:   instruction.AccountName,
		AccountNumber: instruction.AccountNumber,
		BSB:           instruction.BSB,
		Reference:     instruction.Reference,
		ProcessedAt:   instruction.ProcessedAt,
	}
	l.payouts[payout.PaymentID] = append(l.payouts[payout.PaymentID], payout)
	return payout, nil
}

func (l *Ledger) LatestPayout(_ context.Context, paymentID string) (domain.TrustPayout, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	history := l.payouts[paymentID]
	if len(history) == 0 {
		return domain.TrustPayout{}, domain.NotFound("payout_not_found", "no payout recorded for payment "+paymentID)
	}
	return history[len(history)-1], nil
}

func (l *Ledger) Payouts(_ context.Context, paymentID string) ([]domain.TrustPayout, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.TrustPayout(nil), l.payouts[paymentID]...), nil
}

func (l *Ledger) Checkout(_ context.Context, req domain.CheckoutRequest) (domain.CheckoutReceipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.payments[req.PaymentID]
	if !ok {
		return domain.CheckoutReceipt{}, paymentNotFound(req.PaymentID)
	}
	if rec.Status != domain.PaymentStatusHeld {
		return domain.CheckoutReceipt{}, domain.Transition("hold_not_available", "only held payments can be checked out")
	}
	receipt, err := rec.Checkout(l.ids.NewID("chk_"), req)
	if err != nil {
		return domain.CheckoutReceipt{}, err
	}
	l.payments[rec.ID] = rec
	l.receipts[receipt.ID] = receipt
	l.receiptByPayment[rec.ID] = receipt.ID
	l.receiptOrder = append(l.receiptOrder, receipt.ID)
	return receipt, nil
}

func (l *Ledger) GetCheckout(_ context.Context, checkoutID string) (domain.CheckoutReceipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	receipt, ok := l.receipts[checkoutID]
	if !ok {
		return domain.CheckoutReceipt{}, domain.NotFound("checkout_not_found", "checkout "+checkoutID+" not found")
	}
	return receipt, nil
}

func (l *Ledger) GetCheckoutForPayment(_ context.Context, paymentID string) (domain.CheckoutReceipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.receiptByPayment[paymentID]
	if !ok {
		return domain.CheckoutReceipt{}, domain.NotFound("checkout_not_found", "no checkout for payment "+paymentID)
	}
	return l.receipts[id], nil
}

func (l *Ledger) Receipts(_ context.Context) ([]domain.CheckoutReceipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.CheckoutReceipt, 0, len(l.receiptOrder))
	for _, id := range l.receiptOrder {
		out = append(out, l.receipts[id])
	}
	return out, nil
}

func paymentNotFound(paymentID string) error {
	return domain.NotFound("payment_not_found", "payment "+paymentID+" not found")
}

func clonePayment(rec domain.PaymentRecord) domain.PaymentRecord {
	if rec.ReleasedAt != nil {
		t := *rec.ReleasedAt
		rec.ReleasedAt = &t
	}
	if rec.RefundedAt != nil {
		t := *rec.RefundedAt
		rec.RefundedAt = &t
	}
	return rec
}
