package repository

import (
	"context"
	"sync"
	"time"

	"travelsure/internal/models"
)

// In-memory stores back the engine when no database is configured and keep
// the state-machine tests deterministic. The policy arena is a map keyed by a
// monotonically increasing id with two auxiliary indices, updated together
// under one lock so they can never drift apart.
type MemoryPolicyStore struct {
	mu       sync.RWMutex
	nextID   int64
	policies map[int64]models.Policy
	live     map[string]int64   // holder+"\x00"+flightKey -> live policy id
	byHolder map[string][]int64 // append-only purchase order per holder
}

func NewMemoryPolicyStore() *MemoryPolicyStore {
	return &MemoryPolicyStore{
		nextID:   1,
		policies: make(map[int64]models.Policy),
		live:     make(map[string]int64),
		byHolder: make(map[string][]int64),
	}
}

func liveKey(holder, flightKey string) string {
	return holder + "\x00" + flightKey
}

func (s *MemoryPolicyStore) Create(_ context.Context, policy models.Policy) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	policy.ID = id
	s.policies[id] = policy
	s.live[liveKey(policy.Holder, policy.FlightKey)] = id
	s.byHolder[policy.Holder] = append(s.byHolder[policy.Holder], id)
	return id, nil
}

func (s *MemoryPolicyStore) Get(_ context.Context, id int64) (models.Policy, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	policy, ok := s.policies[id]
	return policy, ok, nil
}

func (s *MemoryPolicyStore) UpdateStatus(_ context.Context, id int64, status models.PolicyStatus, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	policy, ok := s.policies[id]
	if !ok {
		return nil
	}
	policy.Status = status
	policy.UpdatedAt = updatedAt
	s.policies[id] = policy
	if status.Terminal() {
		delete(s.live, liveKey(policy.Holder, policy.FlightKey))
	}
	return nil
}

func (s *MemoryPolicyStore) HasNonTerminal(_ context.Context, holder, flightKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.live[liveKey(holder, flightKey)]
	return ok, nil
}

func (s *MemoryPolicyStore) CountByHolder(_ context.Context, holder string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byHolder[holder])), nil
}

func (s *MemoryPolicyStore) IDByHolderIndex(_ context.Context, holder string, index int64) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byHolder[holder]
	if index < 0 || index >= int64(len(ids)) {
		return 0, false, nil
	}
	return ids[index], true, nil
}

func (s *MemoryPolicyStore) ExpiredActiveIDs(_ context.Context, now time.Time) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []int64
	for id, policy := range s.policies {
		if policy.Status == models.PolicyActive && now.After(policy.Expiry) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// MemoryTierStore holds the tier catalog in a map.
type MemoryTierStore struct {
	mu    sync.RWMutex
	tiers map[models.Tier]models.TierConfig
}

func NewMemoryTierStore() *MemoryTierStore {
	return &MemoryTierStore{tiers: make(map[models.Tier]models.TierConfig)}
}

func (s *MemoryTierStore) Get(_ context.Context, tier models.Tier) (models.TierConfig, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.tiers[tier]
	return cfg, ok, nil
}

func (s *MemoryTierStore) Set(_ context.Context, cfg models.TierConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiers[cfg.Tier] = cfg
	return nil
}

// MemoryRequestStore holds pending verification requests. Consume removes
// the entry under the lock, which is what gives duplicate callback delivery
// its at-most-once behavior.
type MemoryRequestStore struct {
	mu       sync.Mutex
	requests map[string]models.VerificationRequest
	byPolicy map[int64]string
}

func NewMemoryRequestStore() *MemoryRequestStore {
	return &MemoryRequestStore{
		requests: make(map[string]models.VerificationRequest),
		byPolicy: make(map[int64]string),
	}
}

func (s *MemoryRequestStore) Put(_ context.Context, req models.VerificationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.RequestID] = req
	s.byPolicy[req.PolicyID] = req.RequestID
	return nil
}

func (s *MemoryRequestStore) LiveForPolicy(_ context.Context, policyID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byPolicy[policyID]
	return ok, nil
}

func (s *MemoryRequestStore) Consume(_ context.Context, requestID string) (models.VerificationRequest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[requestID]
	if !ok {
		return models.VerificationRequest{}, false, nil
	}
	delete(s.requests, requestID)
	delete(s.byPolicy, req.PolicyID)
	return req, true, nil
}
