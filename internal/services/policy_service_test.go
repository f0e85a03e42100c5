package services

import (
	"context"
	"testing"
	"time"

	"travelsure/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuyPolicy_IssuesActivePolicy(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	id := engine.buyGoldPolicy(t, testHolder)

	policy, err := engine.policies.Policies(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PolicyActive, policy.Status)
	assert.Equal(t, testHolder, policy.Holder)
	assert.Equal(t, "UA101-2026-09-01", policy.FlightKey)
	assert.Equal(t, int64(28_087), policy.Premium)
	assert.Equal(t, int64(50_000), policy.Payout)
	assert.Equal(t, int64(120), policy.ThresholdMinutes)
	assert.Equal(t, policy.DepartureTime.Add(testWindow), policy.Expiry)
	assert.True(t, policy.DepartureTime.Before(policy.Expiry))

	// Premium moved from the holder into the pool.
	balance, err := engine.ledger.BalanceOf(ctx, testHolder)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000-28_087), balance)
	assert.Equal(t, testPoolCapital+28_087, engine.ledger.poolBalance())
}

func TestBuyPolicy_DuplicateInsurance(t *testing.T) {
	engine := newTestEngine(t)
	engine.buyGoldPolicy(t, testHolder)

	_, err := engine.policies.BuyPolicy(context.Background(), testHolder, models.BuyPolicyRequest{
		Airline:       "UA",
		FlightNumber:  "101",
		FlightDate:    "2026-09-01",
		DepartureTime: engine.clock.Now().Add(time.Hour).Unix(),
		Tier:          models.TierBasic,
	})
	assert.ErrorIs(t, err, ErrDuplicateInsurance)
}

func TestBuyPolicy_SameFlightDifferentHolder(t *testing.T) {
	engine := newTestEngine(t)
	engine.buyGoldPolicy(t, "traveler-a")

	id := engine.buyGoldPolicy(t, "traveler-b")
	assert.Greater(t, id, int64(0))
}

func TestBuyPolicy_AllowedAgainAfterTerminal(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	id := engine.buyGoldPolicy(t, testHolder)
	engine.clock.Advance(time.Hour + testWindow + time.Second)
	require.NoError(t, engine.expiration.Expire(ctx, id))

	// The slot frees up once the first policy is terminal.
	_, err := engine.policies.BuyPolicy(ctx, testHolder, models.BuyPolicyRequest{
		Airline:       "UA",
		FlightNumber:  "101",
		FlightDate:    "2026-09-01",
		DepartureTime: engine.clock.Now().Add(time.Hour).Unix(),
		Tier:          models.TierGold,
	})
	assert.NoError(t, err)
}

func TestBuyPolicy_DepartureMustBeFuture(t *testing.T) {
	engine := newTestEngine(t)
	engine.ledger.deposit(testHolder, 1_000_000)

	_, err := engine.policies.BuyPolicy(context.Background(), testHolder, models.BuyPolicyRequest{
		Airline:       "UA",
		FlightNumber:  "101",
		FlightDate:    "2026-09-01",
		DepartureTime: engine.clock.Now().Unix(), // not strictly in the future
		Tier:          models.TierGold,
	})
	assert.ErrorIs(t, err, ErrDeparturePassed)
}

func TestBuyPolicy_InsufficientFundsLeavesNoState(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	engine.ledger.deposit(testHolder, 10) // not enough for any premium

	_, err := engine.policies.BuyPolicy(ctx, testHolder, models.BuyPolicyRequest{
		Airline:       "UA",
		FlightNumber:  "101",
		FlightDate:    "2026-09-01",
		DepartureTime: engine.clock.Now().Add(time.Hour).Unix(),
		Tier:          models.TierGold,
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	count, countErr := engine.policies.PolicyCountOf(ctx, testHolder)
	require.NoError(t, countErr)
	assert.Zero(t, count)

	balance, balErr := engine.ledger.BalanceOf(ctx, testHolder)
	require.NoError(t, balErr)
	assert.Equal(t, int64(10), balance)
}

func TestBuyPolicy_RejectsBadFlightInput(t *testing.T) {
	engine := newTestEngine(t)
	engine.ledger.deposit(testHolder, 1_000_000)
	ctx := context.Background()

	_, err := engine.policies.BuyPolicy(ctx, testHolder, models.BuyPolicyRequest{
		Airline:       "TOOLONG",
		FlightNumber:  "101",
		FlightDate:    "2026-09-01",
		DepartureTime: engine.clock.Now().Add(time.Hour).Unix(),
		Tier:          models.TierGold,
	})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = engine.policies.BuyPolicy(ctx, testHolder, models.BuyPolicyRequest{
		Airline:       "UA",
		FlightNumber:  "101",
		FlightDate:    "01/09/2026",
		DepartureTime: engine.clock.Now().Add(time.Hour).Unix(),
		Tier:          models.TierGold,
	})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestBuyPolicy_InactiveTier(t *testing.T) {
	engine := newTestEngine(t)
	engine.ledger.deposit(testHolder, 1_000_000)

	update := validTierUpdate()
	update.Active = false
	_, err := engine.tiers.SetTierConfig(context.Background(), testOperator, models.TierGold, update)
	require.NoError(t, err)

	_, err = engine.policies.BuyPolicy(context.Background(), testHolder, models.BuyPolicyRequest{
		Airline:       "UA",
		FlightNumber:  "101",
		FlightDate:    "2026-09-01",
		DepartureTime: engine.clock.Now().Add(time.Hour).Unix(),
		Tier:          models.TierGold,
	})
	assert.ErrorIs(t, err, ErrUnknownTier)
}

func TestPolicies_UnknownIDReturnsNoneRecord(t *testing.T) {
	engine := newTestEngine(t)

	policy, err := engine.policies.Policies(context.Background(), 999)
	require.NoError(t, err)
	assert.Equal(t, models.PolicyNone, policy.Status)
	assert.Equal(t, int64(999), policy.ID)
	assert.Empty(t, policy.Holder)
}

func TestHolderEnumeration(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	engine.ledger.deposit(testHolder, 1_000_000)

	first := engine.buyGoldPolicy(t, testHolder)
	second, err := engine.policies.BuyPolicy(ctx, testHolder, models.BuyPolicyRequest{
		Airline:       "BA",
		FlightNumber:  "456",
		FlightDate:    "2026-09-02",
		DepartureTime: engine.clock.Now().Add(2 * time.Hour).Unix(),
		Tier:          models.TierSilver,
	})
	require.NoError(t, err)

	count, err := engine.policies.PolicyCountOf(ctx, testHolder)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	id0, err := engine.policies.PolicyIDOfOwnerByIndex(ctx, testHolder, 0)
	require.NoError(t, err)
	assert.Equal(t, first, id0)

	id1, err := engine.policies.PolicyIDOfOwnerByIndex(ctx, testHolder, 1)
	require.NoError(t, err)
	assert.Equal(t, second, id1)

	_, err = engine.policies.PolicyIDOfOwnerByIndex(ctx, testHolder, 2)
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestBuyPolicy_TermsFrozenAgainstTierChanges(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	id := engine.buyGoldPolicy(t, testHolder)

	_, err := engine.tiers.SetTierConfig(ctx, testOperator, models.TierGold, validTierUpdate())
	require.NoError(t, err)

	policy, err := engine.policies.Policies(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(28_087), policy.Premium, "issued premium must not follow tier updates")
	assert.Equal(t, int64(50_000), policy.Payout)
	assert.Equal(t, int64(120), policy.ThresholdMinutes)
}
