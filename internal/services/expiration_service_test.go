package services

import (
	"context"
	"testing"
	"time"

	"travelsure/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpire_BeforeWindowEnds(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	id := engine.buyGoldPolicy(t, testHolder)

	policy, err := engine.policies.Policies(ctx, id)
	require.NoError(t, err)

	// At the expiry instant the window is still open.
	engine.clock.Set(policy.Expiry)
	err = engine.expiration.Expire(ctx, id)
	assert.ErrorIs(t, err, ErrNotExpired)

	after, err := engine.policies.Policies(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PolicyActive, after.Status)
}

func TestExpire_AfterWindowEnds(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	id := engine.buyGoldPolicy(t, testHolder)

	policy, err := engine.policies.Policies(ctx, id)
	require.NoError(t, err)

	engine.clock.Set(policy.Expiry.Add(time.Second))
	require.NoError(t, engine.expiration.Expire(ctx, id))

	after, err := engine.policies.Policies(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PolicyExpired, after.Status)
}

func TestExpire_UnknownPolicy(t *testing.T) {
	engine := newTestEngine(t)

	err := engine.expiration.Expire(context.Background(), 404)
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestExpire_NeverOnTerminalPolicy(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	id := engine.buyGoldPolicy(t, testHolder)

	// Pay the policy out, then run the clock far past the window.
	engine.clock.Advance(time.Hour + 2*time.Minute)
	requestID, err := engine.verification.RequestVerification(ctx, testHolder, id)
	require.NoError(t, err)
	require.NoError(t, engine.verification.OnVerificationResult(ctx, models.VerificationResult{
		RequestID: requestID,
		Occurred:  true,
	}))

	engine.clock.Advance(30 * 24 * time.Hour)
	err = engine.expiration.Expire(ctx, id)
	assert.ErrorIs(t, err, ErrNotActive)

	after, err := engine.policies.Policies(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PolicyPaidOut, after.Status)

	// Same for a policy that is already expired.
	engine.ledger.deposit("late-traveler", 1_000_000)
	id2, err := engine.policies.BuyPolicy(ctx, "late-traveler", models.BuyPolicyRequest{
		Airline:       "DL",
		FlightNumber:  "88",
		FlightDate:    "2026-10-05",
		DepartureTime: engine.clock.Now().Add(time.Hour).Unix(),
		Tier:          models.TierSilver,
		Route:         "ATL-LAX",
	})
	require.NoError(t, err)

	engine.clock.Advance(time.Hour + testWindow + time.Second)
	require.NoError(t, engine.expiration.Expire(ctx, id2))
	err = engine.expiration.Expire(ctx, id2)
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestExpire_ClaimableIsProtected(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	id := engine.buyGoldPolicy(t, testHolder)
	engine.clock.Advance(time.Hour + 2*time.Minute)

	requestID, err := engine.verification.RequestVerification(ctx, testHolder, id)
	require.NoError(t, err)

	engine.ledger.failOut = true
	_ = engine.verification.OnVerificationResult(ctx, models.VerificationResult{
		RequestID: requestID,
		Occurred:  true,
	})

	// A parked claim outlives the verification window.
	engine.clock.Advance(testWindow + 24*time.Hour)
	err = engine.expiration.Expire(ctx, id)
	assert.ErrorIs(t, err, ErrNotActive)

	policy, err := engine.policies.Policies(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PolicyClaimable, policy.Status)
}

func TestSweep_ExpiresOnlyLapsedPolicies(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	first := engine.buyGoldPolicy(t, testHolder)

	engine.ledger.deposit("traveler-2", 1_000_000)
	second, err := engine.policies.BuyPolicy(ctx, "traveler-2", models.BuyPolicyRequest{
		Airline:       "BA",
		FlightNumber:  "287",
		FlightDate:    "2026-09-03",
		DepartureTime: engine.clock.Now().Add(72 * time.Hour).Unix(),
		Tier:          models.TierBasic,
		Route:         "LHR-SFO",
	})
	require.NoError(t, err)

	// Past the first policy's window, well inside the second's.
	engine.clock.Advance(time.Hour + testWindow + time.Second)
	engine.expiration.sweep(ctx)

	p1, err := engine.policies.Policies(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, models.PolicyExpired, p1.Status)

	p2, err := engine.policies.Policies(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, models.PolicyActive, p2.Status)

	sweeps, expired, _ := engine.expiration.Stats()
	assert.Equal(t, int64(1), sweeps)
	assert.Equal(t, int64(1), expired)
}
