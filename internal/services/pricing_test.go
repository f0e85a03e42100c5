package services

import (
	"testing"

	"travelsure/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestComputePremium_GoldScenario(t *testing.T) {
	// payout $500, 35% assumed delay probability, 7% margin, 1.5x multiplier:
	// 50000 -> 17500 -> 18725 -> 28087 (truncated at each step).
	cfg := models.TierConfig{
		BasePayout:           50_000,
		ProbBps:              3500,
		MarginBps:            700,
		PremiumMultiplierBps: 15_000,
	}

	assert.Equal(t, int64(28_087), ComputePremium(cfg))
}

func TestComputePremium_TruncatesEachStep(t *testing.T) {
	// 999 * 3333 / 10000 = 332 (truncated from 332.9667), then
	// 332 * 10100 / 10000 = 335 (truncated from 335.32), then
	// 335 * 15000 / 10000 = 502 (truncated from 502.5).
	cfg := models.TierConfig{
		BasePayout:           999,
		ProbBps:              3333,
		MarginBps:            100,
		PremiumMultiplierBps: 15_000,
	}

	assert.Equal(t, int64(502), ComputePremium(cfg))
}

func TestComputePremium_MonotonicInMultiplier(t *testing.T) {
	cfg := models.TierConfig{
		BasePayout: 50_000,
		ProbBps:    3500,
		MarginBps:  700,
	}

	prev := int64(-1)
	for multiplier := int64(10_000); multiplier <= 20_000; multiplier += 500 {
		cfg.PremiumMultiplierBps = multiplier
		premium := ComputePremium(cfg)
		assert.GreaterOrEqual(t, premium, prev, "premium must not decrease as multiplier grows")
		prev = premium
	}
}

func TestComputePremium_MonotonicInPayout(t *testing.T) {
	cfg := models.TierConfig{
		ProbBps:              3500,
		MarginBps:            700,
		PremiumMultiplierBps: 15_000,
	}

	prev := int64(-1)
	for payout := int64(10_000); payout <= 200_000; payout += 10_000 {
		cfg.BasePayout = payout
		premium := ComputePremium(cfg)
		assert.GreaterOrEqual(t, premium, prev, "premium must not decrease as payout grows")
		prev = premium
	}
}

func TestDefaultTiers_ProgressionIsMonotonic(t *testing.T) {
	tiers := models.DefaultTierConfigs()

	for i := 1; i < len(tiers); i++ {
		lower, higher := tiers[i-1], tiers[i]
		assert.Greater(t, higher.BasePayout, lower.BasePayout,
			"%s payout must exceed %s", higher.Tier, lower.Tier)
		assert.Greater(t, ComputePremium(higher), ComputePremium(lower),
			"%s premium must exceed %s", higher.Tier, lower.Tier)
		assert.Less(t, higher.ThresholdMinutes, lower.ThresholdMinutes,
			"%s threshold must be below %s", higher.Tier, lower.Tier)
	}
}
