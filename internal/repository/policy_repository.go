package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"travelsure/internal/models"

	"github.com/jmoiron/sqlx"
)

// PolicyRepository is the Postgres-backed policy store. The partial unique
// index on (holder, flight_key) over live statuses enforces the
// one-cover-per-flight rule at the database level as well.
type PolicyRepository struct {
	db *sqlx.DB
}

func NewPolicyRepository(db *sqlx.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

func (r *PolicyRepository) Create(ctx context.Context, policy models.Policy) (int64, error) {
	query := `
		INSERT INTO policies (holder, flight_key, departure_time, expiry, tier, threshold_minutes,
			premium, payout, status, flight_number, route, flight_date, created_at, updated_at)
		VALUES (:holder, :flight_key, :departure_time, :expiry, :tier, :threshold_minutes,
			:premium, :payout, :status, :flight_number, :route, :flight_date, :created_at, :updated_at)
		RETURNING id`

	rows, err := r.db.NamedQueryContext(ctx, query, policy)
	if err != nil {
		return 0, fmt.Errorf("failed to create policy: %w", err)
	}
	defer rows.Close()

	var id int64
	if rows.Next() {
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to scan policy id: %w", err)
		}
	}
	return id, nil
}

func (r *PolicyRepository) Get(ctx context.Context, id int64) (models.Policy, bool, error) {
	var policy models.Policy
	query := `
		SELECT id, holder, flight_key, departure_time, expiry, tier, threshold_minutes,
			premium, payout, status, flight_number, route, flight_date, created_at, updated_at
		FROM policies
		WHERE id = $1`

	err := r.db.GetContext(ctx, &policy, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Policy{}, false, nil
		}
		return models.Policy{}, false, fmt.Errorf("failed to get policy: %w", err)
	}
	return policy, true, nil
}

func (r *PolicyRepository) UpdateStatus(ctx context.Context, id int64, status models.PolicyStatus, updatedAt time.Time) error {
	query := `UPDATE policies SET status = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, status, updatedAt, id); err != nil {
		return fmt.Errorf("failed to update policy status: %w", err)
	}
	return nil
}

func (r *PolicyRepository) HasNonTerminal(ctx context.Context, holder, flightKey string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM policies
			WHERE holder = $1 AND flight_key = $2 AND status IN ('active', 'claimable')
		)`

	if err := r.db.GetContext(ctx, &exists, query, holder, flightKey); err != nil {
		return false, fmt.Errorf("failed to check existing policies: %w", err)
	}
	return exists, nil
}

func (r *PolicyRepository) CountByHolder(ctx context.Context, holder string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM policies WHERE holder = $1`
	if err := r.db.GetContext(ctx, &count, query, holder); err != nil {
		return 0, fmt.Errorf("failed to count policies: %w", err)
	}
	return count, nil
}

func (r *PolicyRepository) IDByHolderIndex(ctx context.Context, holder string, index int64) (int64, bool, error) {
	var id int64
	query := `SELECT id FROM policies WHERE holder = $1 ORDER BY id LIMIT 1 OFFSET $2`
	err := r.db.GetContext(ctx, &id, query, holder, index)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get policy by holder index: %w", err)
	}
	return id, true, nil
}

func (r *PolicyRepository) ExpiredActiveIDs(ctx context.Context, now time.Time) ([]int64, error) {
	var ids []int64
	query := `SELECT id FROM policies WHERE status = 'active' AND expiry < $1`
	if err := r.db.SelectContext(ctx, &ids, query, now); err != nil {
		return nil, fmt.Errorf("failed to list expired policies: %w", err)
	}
	return ids, nil
}
