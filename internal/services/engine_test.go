package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"travelsure/internal/models"
	"travelsure/internal/repository"

	"github.com/stretchr/testify/require"
)

// ============================================================================
// TEST FIXTURES
// ============================================================================

const (
	testOperator    = "ops-admin"
	testHolder      = "traveler-1"
	testWindow      = 24 * time.Hour
	testPoolCapital = int64(10_000_000)
)

var testStart = time.Date(2026, time.September, 1, 8, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fakeLedger is an in-test custody ledger with a single pool account.
type fakeLedger struct {
	mu       sync.Mutex
	balances map[string]int64
	pool     int64
	failOut  bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: make(map[string]int64)}
}

func (l *fakeLedger) TransferIn(_ context.Context, from string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[from] < amount {
		return fmt.Errorf("%w: %s", ErrInsufficientFunds, from)
	}
	l.balances[from] -= amount
	l.pool += amount
	return nil
}

func (l *fakeLedger) TransferOut(_ context.Context, to string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failOut {
		return fmt.Errorf("%w: custody unavailable", ErrTransferFailed)
	}
	if l.pool < amount {
		return fmt.Errorf("%w: pool", ErrInsufficientFunds)
	}
	l.pool -= amount
	l.balances[to] += amount
	return nil
}

func (l *fakeLedger) FundPool(_ context.Context, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pool += amount
	return nil
}

func (l *fakeLedger) BalanceOf(_ context.Context, holder string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[holder], nil
}

func (l *fakeLedger) deposit(holder string, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[holder] += amount
}

func (l *fakeLedger) poolBalance() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pool
}

// fakeDispatcher hands out sequential request ids and records dispatches
// without performing any lookup; tests deliver results by hand.
type fakeDispatcher struct {
	mu         sync.Mutex
	nextID     int
	dispatched []int64
	namespaces []string
}

func (d *fakeDispatcher) Dispatch(_ context.Context, namespace string, policyID int64, _ string, _ time.Time) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	d.dispatched = append(d.dispatched, policyID)
	d.namespaces = append(d.namespaces, namespace)
	return fmt.Sprintf("req-%d", d.nextID), nil
}

type testEngine struct {
	clock        *fakeClock
	ledger       *fakeLedger
	dispatcher   *fakeDispatcher
	tiers        *TierService
	policies     *PolicyService
	verification *VerificationService
	expiration   *ExpirationService
	admin        *AdminService
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()

	clock := &fakeClock{now: testStart}
	state := NewEngineState(clock, testOperator, ProtocolConfig{
		ExpiryWindow:         testWindow,
		CorrelationNamespace: "test",
		ResponseBudget:       300_000,
		VerifierNetworkID:    "test-net",
	})

	policyStore := repository.NewMemoryPolicyStore()
	tierStore := repository.NewMemoryTierStore()
	requestStore := repository.NewMemoryRequestStore()
	ledger := newFakeLedger()
	dispatcher := &fakeDispatcher{}

	tiers := NewTierService(state, tierStore)
	require.NoError(t, tiers.Seed(context.Background()))

	// Capitalize the pool: premiums alone cannot cover the first payout.
	require.NoError(t, ledger.FundPool(context.Background(), testPoolCapital))

	return &testEngine{
		clock:        clock,
		ledger:       ledger,
		dispatcher:   dispatcher,
		tiers:        tiers,
		policies:     NewPolicyService(state, policyStore, tiers, ledger, nil),
		verification: NewVerificationService(state, policyStore, requestStore, ledger, dispatcher, nil),
		expiration:   NewExpirationService(state, policyStore, nil, time.Minute),
		admin:        NewAdminService(state, ledger),
	}
}

// buyGoldPolicy funds the holder and buys a gold policy departing one hour
// from the engine clock.
func (e *testEngine) buyGoldPolicy(t *testing.T, holder string) int64 {
	t.Helper()
	e.ledger.deposit(holder, 1_000_000)

	id, err := e.policies.BuyPolicy(context.Background(), holder, models.BuyPolicyRequest{
		Airline:       "UA",
		FlightNumber:  "101",
		FlightDate:    "2026-09-01",
		DepartureTime: e.clock.Now().Add(time.Hour).Unix(),
		Tier:          models.TierGold,
		Route:         "SFO-JFK",
	})
	require.NoError(t, err)
	return id
}

// buyGoldRequest builds the same purchase input as buyGoldPolicy with an
// explicit departure time.
func buyGoldRequest(departure time.Time) models.BuyPolicyRequest {
	return models.BuyPolicyRequest{
		Airline:       "UA",
		FlightNumber:  "101",
		FlightDate:    "2026-09-01",
		DepartureTime: departure.Unix(),
		Tier:          models.TierGold,
		Route:         "SFO-JFK",
	}
}

func int64Ptr(v int64) *int64 { return &v }
