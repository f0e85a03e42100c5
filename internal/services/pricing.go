package services

import "travelsure/internal/models"

const bpsDenominator = 10_000

// ComputePremium prices a tier:
//
//	premium = basePayout × probBps/10000 × (10000+marginBps)/10000 × premiumMultiplierBps/10000
//
// Each step divides in integer arithmetic on the currency's smallest unit,
// truncating toward zero, in this exact order. The order matters: it keeps
// quotes reproducible down to the cent across every caller.
func ComputePremium(cfg models.TierConfig) int64 {
	premium := cfg.BasePayout * cfg.ProbBps / bpsDenominator
	premium = premium * (bpsDenominator + cfg.MarginBps) / bpsDenominator
	premium = premium * cfg.PremiumMultiplierBps / bpsDenominator
	return premium
}
