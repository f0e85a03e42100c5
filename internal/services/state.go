package services

import (
	"context"
	"sync"
	"time"

	"travelsure/internal/models"
)

// Clock abstracts time.Now so window-boundary behavior is testable with a
// deterministic clock.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func NewRealClock() Clock { return realClock{} }

// PolicyStore owns the policy arena: records keyed by a monotonically
// increasing id, a uniqueness index over (holder, flightKey) for non-terminal
// policies, and an append-only per-holder index. Create updates all three
// together.
type PolicyStore interface {
	Create(ctx context.Context, policy models.Policy) (int64, error)
	Get(ctx context.Context, id int64) (models.Policy, bool, error)
	UpdateStatus(ctx context.Context, id int64, status models.PolicyStatus, updatedAt time.Time) error
	HasNonTerminal(ctx context.Context, holder, flightKey string) (bool, error)
	CountByHolder(ctx context.Context, holder string) (int64, error)
	IDByHolderIndex(ctx context.Context, holder string, index int64) (int64, bool, error)
	ExpiredActiveIDs(ctx context.Context, now time.Time) ([]int64, error)
}

// TierStore holds the coverage tier catalog.
type TierStore interface {
	Get(ctx context.Context, tier models.Tier) (models.TierConfig, bool, error)
	Set(ctx context.Context, cfg models.TierConfig) error
}

// RequestStore holds pending verification requests. Consume returns and
// removes the request in one step, which is what makes duplicate callback
// delivery a no-op.
type RequestStore interface {
	Put(ctx context.Context, req models.VerificationRequest) error
	LiveForPolicy(ctx context.Context, policyID int64) (bool, error)
	Consume(ctx context.Context, requestID string) (models.VerificationRequest, bool, error)
}

// CustodyLedger is the external system holding premium and payout currency.
// From is always debited into the pool held for the insurer; To is always
// credited out of it. FundPool capitalizes the pool from outside the ledger,
// so payouts can clear before collected premiums cover them. Every call can
// fail and every failure is checked.
type CustodyLedger interface {
	TransferIn(ctx context.Context, from string, amount int64) error
	TransferOut(ctx context.Context, to string, amount int64) error
	FundPool(ctx context.Context, amount int64) error
	BalanceOf(ctx context.Context, holder string) (int64, error)
}

// VerifierDispatcher sends an asynchronous delay-verification request and
// returns an opaque request id immediately. The answer arrives later through
// VerificationService.OnVerificationResult or OnVerificationError. The
// caller supplies the correlation namespace so request ids always reflect
// the current protocol configuration.
type VerifierDispatcher interface {
	Dispatch(ctx context.Context, namespace string, policyID int64, flightKey string, departureTime time.Time) (string, error)
}

// PolicyNotifier publishes policy lifecycle events for downstream consumers.
type PolicyNotifier interface {
	PublishPolicyEvent(ctx context.Context, eventType models.PolicyEventType, policy models.Policy) error
}

// ProtocolConfig is the runtime-mutable engine configuration. Policies copy
// what they need at issuance, so changes only affect later purchases.
type ProtocolConfig struct {
	ExpiryWindow         time.Duration
	CorrelationNamespace string
	ResponseBudget       int64
	VerifierNetworkID    string
}

// EngineState serializes every mutating engine operation behind one mutex,
// the single-writer discipline the state machine depends on. The ledger,
// coordinator, reaper and admin services all share one instance.
type EngineState struct {
	mu         sync.Mutex
	cfg        ProtocolConfig
	clock      Clock
	operatorID string
}

func NewEngineState(clock Clock, operatorID string, cfg ProtocolConfig) *EngineState {
	return &EngineState{cfg: cfg, clock: clock, operatorID: operatorID}
}

func (s *EngineState) lock()   { s.mu.Lock() }
func (s *EngineState) unlock() { s.mu.Unlock() }

func (s *EngineState) now() time.Time { return s.clock.Now() }

func (s *EngineState) isOperator(caller string) bool {
	return caller != "" && caller == s.operatorID
}

// Config returns a copy of the current protocol configuration.
func (s *EngineState) Config() ProtocolConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}
