package repository

import (
	"context"
	"database/sql"
	"fmt"

	"travelsure/internal/models"

	"github.com/jmoiron/sqlx"
)

// RequestRepository is the Postgres-backed pending-request store. Pending
// verification requests survive a restart, unlike the in-memory variant.
type RequestRepository struct {
	db *sqlx.DB
}

func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Put(ctx context.Context, req models.VerificationRequest) error {
	query := `
		INSERT INTO verification_requests (request_id, policy_id, created_at)
		VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, req.RequestID, req.PolicyID, req.CreatedAt); err != nil {
		return fmt.Errorf("failed to record verification request: %w", err)
	}
	return nil
}

func (r *RequestRepository) LiveForPolicy(ctx context.Context, policyID int64) (bool, error) {
	var live bool
	query := `SELECT EXISTS (SELECT 1 FROM verification_requests WHERE policy_id = $1)`

	if err := r.db.GetContext(ctx, &live, query, policyID); err != nil {
		return false, fmt.Errorf("failed to check pending requests: %w", err)
	}
	return live, nil
}

// Consume deletes and returns the request in one statement, so a replayed
// request id loses the race at the database rather than in the engine.
func (r *RequestRepository) Consume(ctx context.Context, requestID string) (models.VerificationRequest, bool, error) {
	var req models.VerificationRequest
	query := `
		DELETE FROM verification_requests
		WHERE request_id = $1
		RETURNING request_id, policy_id, created_at`

	err := r.db.GetContext(ctx, &req, query, requestID)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.VerificationRequest{}, false, nil
		}
		return models.VerificationRequest{}, false, fmt.Errorf("failed to consume verification request: %w", err)
	}
	return req, true, nil
}
