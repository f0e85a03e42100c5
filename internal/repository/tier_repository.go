package repository

import (
	"context"
	"database/sql"
	"fmt"

	"travelsure/internal/models"

	"github.com/jmoiron/sqlx"
)

// TierRepository is the Postgres-backed tier catalog store.
type TierRepository struct {
	db *sqlx.DB
}

func NewTierRepository(db *sqlx.DB) *TierRepository {
	return &TierRepository{db: db}
}

func (r *TierRepository) Get(ctx context.Context, tier models.Tier) (models.TierConfig, bool, error) {
	var cfg models.TierConfig
	query := `
		SELECT tier, base_payout, prob_bps, margin_bps, premium_multiplier_bps,
			threshold_minutes, active, updated_at
		FROM tier_configs
		WHERE tier = $1`

	err := r.db.GetContext(ctx, &cfg, query, tier)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.TierConfig{}, false, nil
		}
		return models.TierConfig{}, false, fmt.Errorf("failed to get tier config: %w", err)
	}
	return cfg, true, nil
}

func (r *TierRepository) Set(ctx context.Context, cfg models.TierConfig) error {
	query := `
		INSERT INTO tier_configs (tier, base_payout, prob_bps, margin_bps, premium_multiplier_bps,
			threshold_minutes, active, updated_at)
		VALUES (:tier, :base_payout, :prob_bps, :margin_bps, :premium_multiplier_bps,
			:threshold_minutes, :active, :updated_at)
		ON CONFLICT (tier) DO UPDATE SET
			base_payout = EXCLUDED.base_payout,
			prob_bps = EXCLUDED.prob_bps,
			margin_bps = EXCLUDED.margin_bps,
			premium_multiplier_bps = EXCLUDED.premium_multiplier_bps,
			threshold_minutes = EXCLUDED.threshold_minutes,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, cfg); err != nil {
		return fmt.Errorf("failed to set tier config: %w", err)
	}
	return nil
}
