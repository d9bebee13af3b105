package application

import (
	"context"

	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
)

func (s *Service) LoyaltyStatus(ctx context.Context, accountID string) domain.MemberStatus {
	return s.loyalty.DescribeMember(ctx, accountID)
}

func (s *Service) LoyaltySchedule(ctx context.Context) domain.LoyaltySummary {
	return s.loyalty.Summaries(ctx)
}

// Insights returns the cached rollup when one is fresh, otherwise rebuilds it
// from a snapshot of each store.
func (s *Service) Insights(ctx context.Context) (domain.Insights, error) {
	if s.insights != nil && s.cfg.InsightsCacheTTL > 0 {
		cached, err := s.insights.Get(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "insights cache read failed", "operation", "insights", "outcome", "degraded", "error", err)
		} else if cached != nil {
			return *cached, nil
		}
	}

	payments, err := s.ledger.List(ctx)
	if err != nil {
		return domain.Insights{}, err
	}
	receipts, err := s.ledger.Receipts(ctx)
	if err != nil {
		return domain.Insights{}, err
	}
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return domain.Insights{}, err
	}
	out := domain.BuildInsights(s.nowFn(), payments, receipts, invoices, s.loyalty.Summaries(ctx))

	if s.insights != nil && s.cfg.InsightsCacheTTL > 0 {
		if err := s.insights.Put(ctx, out, s.cfg.InsightsCacheTTL); err != nil {
			s.logger.WarnContext(ctx, "insights cache write failed", "operation", "insights", "outcome", "degraded", "error", err)
		}
	}
	return out, nil
}
