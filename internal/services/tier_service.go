package services

import (
	"context"
	"fmt"
	"log/slog"

	"travelsure/internal/models"
)

// Bounds for tier parameters. Out-of-range admin input is rejected before
// any mutation.
const (
	minProbBps              = 1
	maxProbBps              = 10_000
	minMarginBps            = 0
	maxMarginBps            = 5_000
	minPremiumMultiplierBps = 10_000 // 1x
	maxPremiumMultiplierBps = 20_000 // 2x
	minThresholdMinutes     = 30
	maxThresholdMinutes     = 360
)

// TierService is the coverage tier catalog: buyer-facing reads and quoting,
// operator-only writes.
type TierService struct {
	state     *EngineState
	tierStore TierStore
}

func NewTierService(state *EngineState, tierStore TierStore) *TierService {
	return &TierService{state: state, tierStore: tierStore}
}

// Seed installs the default tier table for any tier not already configured.
func (s *TierService) Seed(ctx context.Context) error {
	for _, cfg := range models.DefaultTierConfigs() {
		if _, ok, err := s.tierStore.Get(ctx, cfg.Tier); err != nil {
			return fmt.Errorf("failed to check tier %s: %w", cfg.Tier, err)
		} else if ok {
			continue
		}
		cfg.UpdatedAt = s.state.now()
		if err := s.tierStore.Set(ctx, cfg); err != nil {
			return fmt.Errorf("failed to seed tier %s: %w", cfg.Tier, err)
		}
	}
	return nil
}

// GetTierConfig returns the configuration of an active tier.
func (s *TierService) GetTierConfig(ctx context.Context, tier models.Tier) (models.TierConfig, error) {
	cfg, ok, err := s.tierStore.Get(ctx, tier)
	if err != nil {
		return models.TierConfig{}, fmt.Errorf("failed to load tier %s: %w", tier, err)
	}
	if !ok || !cfg.Active {
		return models.TierConfig{}, fmt.Errorf("%w: %s", ErrUnknownTier, tier)
	}
	return cfg, nil
}

// Quote prices a tier for buyer-facing display before purchase.
func (s *TierService) Quote(ctx context.Context, tier models.Tier) (models.TierPricing, error) {
	cfg, err := s.GetTierConfig(ctx, tier)
	if err != nil {
		return models.TierPricing{}, err
	}
	return models.TierPricing{
		Tier:             tier,
		Premium:          ComputePremium(cfg),
		Payout:           cfg.BasePayout,
		ThresholdMinutes: cfg.ThresholdMinutes,
	}, nil
}

// SetTierConfig replaces one tier's configuration. Operator only. Every bound
// is checked before any mutation; partial updates are not supported, the
// request carries the full parameter set.
func (s *TierService) SetTierConfig(ctx context.Context, caller string, tier models.Tier, req models.SetTierConfigRequest) (models.TierConfig, error) {
	if !s.state.isOperator(caller) {
		return models.TierConfig{}, ErrNotOperator
	}
	if err := validateTierParams(req); err != nil {
		return models.TierConfig{}, err
	}

	s.state.lock()
	defer s.state.unlock()

	cfg := models.TierConfig{
		Tier:                 tier,
		BasePayout:           req.BasePayout,
		ProbBps:              req.ProbBps,
		MarginBps:            req.MarginBps,
		PremiumMultiplierBps: req.PremiumMultiplierBps,
		ThresholdMinutes:     req.ThresholdMinutes,
		Active:               req.Active,
		UpdatedAt:            s.state.now(),
	}
	if err := s.tierStore.Set(ctx, cfg); err != nil {
		return models.TierConfig{}, fmt.Errorf("failed to store tier %s: %w", tier, err)
	}

	slog.Info("tier config updated", "tier", tier, "base_payout", cfg.BasePayout, "active", cfg.Active)
	return cfg, nil
}

func validateTierParams(req models.SetTierConfigRequest) error {
	if req.BasePayout <= 0 {
		return fmt.Errorf("%w: base_payout must be positive", ErrInvalidParameter)
	}
	if req.ProbBps < minProbBps || req.ProbBps > maxProbBps {
		return fmt.Errorf("%w: prob_bps must be in [%d, %d]", ErrInvalidParameter, minProbBps, maxProbBps)
	}
	if req.MarginBps < minMarginBps || req.MarginBps > maxMarginBps {
		return fmt.Errorf("%w: margin_bps must be in [%d, %d]", ErrInvalidParameter, minMarginBps, maxMarginBps)
	}
	if req.PremiumMultiplierBps < minPremiumMultiplierBps || req.PremiumMultiplierBps > maxPremiumMultiplierBps {
		return fmt.Errorf("%w: premium_multiplier_bps must be in [%d, %d]", ErrInvalidParameter, minPremiumMultiplierBps, maxPremiumMultiplierBps)
	}
	if req.ThresholdMinutes < minThresholdMinutes || req.ThresholdMinutes > maxThresholdMinutes {
		return fmt.Errorf("%w: threshold_minutes must be in [%d, %d]", ErrInvalidParameter, minThresholdMinutes, maxThresholdMinutes)
	}
	return nil
}
