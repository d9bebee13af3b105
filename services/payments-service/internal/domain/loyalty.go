package domain

import (
	"fmt"
	"sort"
	"strings"
)

type LoyaltyTier struct {
	Name      string  `json:"name" yaml:"name"`
	Threshold int     `json:"threshold" yaml:"threshold"`
	FeeRate   float64 `json:"fee_rate" yaml:"fee_rate"`
	Badge     string  `json:"badge" yaml:"badge"`
}

// TierSchedule is sorted by ascending threshold, starts at zero and never
// raises the fee rate as the threshold grows.
type TierSchedule struct {
	tiers []LoyaltyTier
}

func DefaultTierSchedule() TierSchedule {
	return TierSchedule{tiers: []LoyaltyTier{
		{Name: "Launch", Threshold: 0, FeeRate: 0.018, Badge: "ConveySafe Launch"},
		{Name: "Trusted Partner", Threshold: 3, FeeRate: 0.015, Badge: "ConveySafe Trusted"},
		{Name: "Preferred Partner", Threshold: 8, FeeRate: 0.012, Badge: "ConveySafe Preferred"},
	}}
}

func NewTierSchedule(tiers []LoyaltyTier) (TierSchedule, error) {
	if len(tiers) == 0 {
		return TierSchedule{}, fmt.Errorf("%w: loyalty schedule needs at least one tier", ErrInvalidInput)
	}
	sorted := append([]LoyaltyTier(nil), tiers...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Threshold < sorted[j].Threshold })
	if sorted[0].Threshold != 0 {
		return TierSchedule{}, fmt.Errorf("%w: lowest loyalty tier must start at 0 jobs", ErrInvalidInput)
	}
	for i, tier := range sorted {
		if strings.TrimSpace(tier.Name) == "" {
			return TierSchedule{}, fmt.Errorf("%w: loyalty tier %d has no name", ErrInvalidInput, i)
		}
		if !ValidRate(tier.FeeRate, 1) {
			return TierSchedule{}, fmt.Errorf("%w: loyalty tier %q fee rate out of range", ErrInvalidInput, tier.Name)
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if tier.Threshold == prev.Threshold {
			return TierSchedule{}, fmt.Errorf("%w: duplicate loyalty threshold %d", ErrInvalidInput, tier.Threshold)
		}
		if tier.FeeRate > prev.FeeRate {
			return TierSchedule{}, fmt.Errorf("%w: loyalty tier %q raises the fee rate", ErrInvalidInput, tier.Name)
		}
	}
	return TierSchedule{tiers: sorted}, nil
}

// ForCount returns the highest tier whose threshold is at most completed.
func (s TierSchedule) ForCount(completed int) LoyaltyTier {
	tiers := s.Tiers()
	return tiers[indexFor(tiers, completed)]
}

func indexFor(tiers []LoyaltyTier, completed int) int {
	selected := 0
	for i, tier := range tiers {
		if tier.Threshold <= completed {
			selected = i
		}
	}
	return selected
}

func (s TierSchedule) BaseRate() float64 { return s.Tiers()[0].FeeRate }

func (s TierSchedule) Tiers() []LoyaltyTier {
	if len(s.tiers) == 0 {
		return DefaultTierSchedule().tiers
	}
	return append([]LoyaltyTier(nil), s.tiers...)
}

type MemberStatus struct {
	AccountID     string  `json:"account_id"`
	CompletedJobs int     `json:"completed_jobs"`
	Tier          string  `json:"tier"`
	Badge         string  `json:"badge"`
	FeeRate       float64 `json:"fee_rate"`
}

func (s TierSchedule) Describe(accountID string, completed int) MemberStatus {
	tier := s.ForCount(completed)
	return MemberStatus{
		AccountID:     accountID,
		CompletedJobs: completed,
		Tier:          tier.Name,
		Badge:         tier.Badge,
		FeeRate:       tier.FeeRate,
	}
}

type TierSummary struct {
	Name      string  `json:"name"`
	Threshold int     `json:"threshold"`
	FeeRate   float64 `json:"fee_rate"`
	Badge     string  `json:"badge"`
	Members   int     `json:"members"`
}

type LoyaltySummary struct {
	Members int           `json:"members"`
	Tiers   []TierSummary `json:"tiers"`
}

// Summarize classifies each member count into exactly one tier.
func (s TierSchedule) Summarize(completedByMember map[string]int) LoyaltySummary {
	tiers := s.Tiers()
	out := LoyaltySummary{Members: len(completedByMember), Tiers: make([]TierSummary, len(tiers))}
	for i, tier := range tiers {
		out.Tiers[i] = TierSummary{Name: tier.Name, Threshold: tier.Threshold, FeeRate: tier.FeeRate, Badge: tier.Badge}
	}
	for _, completed := range completedByMember {
		out.Tiers[indexFor(tiers, completed)].Members++
	}
	return out
}
