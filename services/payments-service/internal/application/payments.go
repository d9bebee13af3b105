package application

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
)

func (s *Service) CreateHold(ctx context.Context, actor Actor, input CreateHoldInput) (HoldResult, error) {
	hold, err := domain.NewHold{
		JobID:                input.JobID,
		MilestoneID:          input.MilestoneID,
		Currency:             input.Currency,
		AmountCents:          input.AmountCents,
		Reference:            input.Reference,
		ConveyancerAccountID: input.ConveyancerAccountID,
	}.Normalize()
	if err != nil {
		return HoldResult{}, err
	}
	requestHash := hashJSON(input)
	var out HoldResult
	if ok, err := s.replay(ctx, actor.IdempotencyKey, requestHash, &out); err != nil {
		return HoldResult{}, err
	} else if ok {
		return out, nil
	}
	if err := s.reserve(ctx, actor.IdempotencyKey, requestHash); err != nil {
		return HoldResult{}, err
	}

	payment, err := s.ledger.CreateHold(ctx, hold)
	if err != nil {
		s.abandon(ctx, actor.IdempotencyKey)
		return HoldResult{}, err
	}
	out = HoldResult{Payment: payment}
	if payment.ConveyancerAccountID != "" {
		member := s.loyalty.DescribeMember(ctx, payment.ConveyancerAccountID)
		out.Loyalty = &member
	}
	s.metrics.HoldCreated(payment.Currency, payment.AmountCents)
	s.enqueue(ctx, actor, domain.EventHoldCreated, payment.ID, paymentEventData(payment))
	s.complete(ctx, actor.IdempotencyKey, http.StatusCreated, out)
	return out, nil
}

func (s *Service) GetHold(ctx context.Context, paymentID string) (domain.PaymentRecord, error) {
	return s.ledger.Get(ctx, strings.TrimSpace(paymentID))
}

func (s *Service) ListHolds(ctx context.Context) ([]domain.PaymentRecord, error) {
	return s.ledger.List(ctx)
}

func (s *Service) ReleaseHold(ctx context.Context, actor Actor, paymentID string, releasedAt time.Time) (domain.PaymentRecord, error) {
	if releasedAt.IsZero() {
		return domain.PaymentRecord{}, domain.Invalid("missing_released_at", "released_at is required")
	}
	payment, err := s.ledger.Release(ctx, strings.TrimSpace(paymentID), releasedAt)
	if err != nil {
		return domain.PaymentRecord{}, err
	}
	s.metrics.PaymentTransitioned(payment.Status)
	s.enqueue(ctx, actor, domain.EventPaymentReleased, payment.ID, paymentEventData(payment))
	return payment, nil
}

func (s *Service) RefundHold(ctx context.Context, actor Actor, paymentID string, refundedAt time.Time) (domain.PaymentRecord, error) {
	if refundedAt.IsZero() {
		return domain.PaymentRecord{}, domain.Invalid("missing_refunded_at", "refunded_at is required")
	}
	payment, err := s.ledger.Refund(ctx, strings.TrimSpace(paymentID), refundedAt)
	if err != nil {
		return domain.PaymentRecord{}, err
	}
	s.metrics.PaymentTransitioned(payment.Status)
	s.enqueue(ctx, actor, domain.EventPaymentRefunded, payment.ID, paymentEventData(payment))
	return payment, nil
}

func (s *Service) RecordPayout(ctx context.Context, actor Actor, input PayoutInput) (domain.TrustPayout, error) {
	payout, err := s.ledger.RecordPayout(ctx, domain.PayoutInstruction{
		PaymentID:     input.PaymentID,
		AccountName:   input.AccountName,
		AccountNumber: input.AccountNumber,
		BSB:           input.BSB,
		Reference:     input.Reference,
		ProcessedAt:   input.ProcessedAt,
	})
	if err != nil {
		return domain.TrustPayout{}, err
	}
	s.enqueue(ctx, actor, domain.EventPayoutRecorded, payout.PaymentID, map[string]any{
		"payment_id":   payout.PaymentID,
		"payout_id":    payout.ID,
		"reference":    payout.Reference,
		"processed_at": payout.ProcessedAt,
	})
	return payout, nil
}

func (s *Service) GetPayout(ctx context.Context, paymentID string) (PayoutView, error) {
	paymentID = strings.TrimSpace(paymentID)
	if _, err := s.ledger.Get(ctx, paymentID); err != nil {
		return PayoutView{}, err
	}
	latest, err := s.ledger.LatestPayout(ctx, paymentID)
	if err != nil {
		return PayoutView{}, err
	}
	history, err := s.ledger.Payouts(ctx, paymentID)
	if err != nil {
		return PayoutView{}, err
	}
	return PayoutView{Latest: latest, History: history}, nil
}
