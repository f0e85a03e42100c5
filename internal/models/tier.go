package models

import "time"

// TierConfig holds the pricing parameters of one coverage tier. Amounts are
// in the currency's smallest unit (cents), rates in basis points.
type TierConfig struct {
	Tier                 Tier      `json:"tier" db:"tier"`
	BasePayout           int64     `json:"base_payout" db:"base_payout"`
	ProbBps              int64     `json:"prob_bps" db:"prob_bps"`
	MarginBps            int64     `json:"margin_bps" db:"margin_bps"`
	PremiumMultiplierBps int64     `json:"premium_multiplier_bps" db:"premium_multiplier_bps"`
	ThresholdMinutes     int64     `json:"threshold_minutes" db:"threshold_minutes"`
	Active               bool      `json:"active" db:"active"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// TierPricing is the buyer-facing quote for a tier.
type TierPricing struct {
	Tier             Tier  `json:"tier"`
	Premium          int64 `json:"premium"`
	Payout           int64 `json:"payout"`
	ThresholdMinutes int64 `json:"threshold_minutes"`
}

// DefaultTierConfigs seeds the four product tiers. Payouts and delay
// thresholds follow the TravelSure product sheet: Basic $100 / 4h up to
// Platinum $1000 / 1h.
func DefaultTierConfigs() []TierConfig {
	return []TierConfig{
		{Tier: TierBasic, BasePayout: 10_000, ProbBps: 2000, MarginBps: 500, PremiumMultiplierBps: 10_000, ThresholdMinutes: 240, Active: true},
		{Tier: TierSilver, BasePayout: 25_000, ProbBps: 2500, MarginBps: 600, PremiumMultiplierBps: 12_500, ThresholdMinutes: 180, Active: true},
		{Tier: TierGold, BasePayout: 50_000, ProbBps: 3500, MarginBps: 700, PremiumMultiplierBps: 15_000, ThresholdMinutes: 120, Active: true},
		{Tier: TierPlatinum, BasePayout: 100_000, ProbBps: 4000, MarginBps: 800, PremiumMultiplierBps: 20_000, ThresholdMinutes: 60, Active: true},
	}
}
