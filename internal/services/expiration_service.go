package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"travelsure/internal/models"
)

// ExpirationService sweeps policies past their verification window into the
// terminal expired state. Expire is callable by anyone; the background
// sweeper just calls the same operation on a timer.
type ExpirationService struct {
	state       *EngineState
	policyStore PolicyStore
	notifier    PolicyNotifier
	interval    time.Duration
	stopChannel chan struct{}
	stopOnce    sync.Once
	stats       *SweepStats
}

// SweepStats tracks background sweep statistics.
type SweepStats struct {
	SweepsCompleted int64
	PoliciesExpired int64
	LastSweep       time.Time
	mu              sync.RWMutex
}

func NewExpirationService(state *EngineState, policyStore PolicyStore, notifier PolicyNotifier, interval time.Duration) *ExpirationService {
	return &ExpirationService{
		state:       state,
		policyStore: policyStore,
		notifier:    notifier,
		interval:    interval,
		stopChannel: make(chan struct{}),
		stats:       &SweepStats{},
	}
}

// Expire moves one policy to the expired state. No payout and no premium
// refund: the premium is earned regardless of outcome.
func (s *ExpirationService) Expire(ctx context.Context, policyID int64) error {
	s.state.lock()
	defer s.state.unlock()

	policy, ok, err := s.policyStore.Get(ctx, policyID)
	if err != nil {
		return fmt.Errorf("failed to load policy %d: %w", policyID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownPolicy, policyID)
	}
	if policy.Status != models.PolicyActive {
		return fmt.Errorf("%w: policy %d is %s", ErrNotActive, policyID, policy.Status)
	}
	if !s.state.now().After(policy.Expiry) {
		return fmt.Errorf("%w: policy %d expires at %s", ErrNotExpired, policyID, policy.Expiry)
	}

	if err := s.policyStore.UpdateStatus(ctx, policyID, models.PolicyExpired, s.state.now()); err != nil {
		return fmt.Errorf("failed to mark policy expired: %w", err)
	}
	policy.Status = models.PolicyExpired
	if s.notifier != nil {
		if err := s.notifier.PublishPolicyEvent(ctx, models.PolicyEventExpired, policy); err != nil {
			slog.Error("failed to publish policy event", "event", models.PolicyEventExpired, "policy_id", policyID, "error", err)
		}
	}

	slog.Info("policy expired", "policy_id", policyID, "holder", policy.Holder)
	return nil
}

// StartSweeper runs the periodic expiry sweep until the context is cancelled
// or Stop is called.
func (s *ExpirationService) StartSweeper(ctx context.Context) error {
	slog.Info("starting policy expiry sweeper", "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			slog.Info("policy expiry sweeper stopped")
			return ctx.Err()
		case <-s.stopChannel:
			slog.Info("policy expiry sweeper stopped gracefully")
			return nil
		}
	}
}

// Stop gracefully stops the sweeper.
func (s *ExpirationService) Stop() {
	s.stopOnce.Do(func() { close(s.stopChannel) })
}

func (s *ExpirationService) sweep(ctx context.Context) {
	ids, err := s.policyStore.ExpiredActiveIDs(ctx, s.state.now())
	if err != nil {
		slog.Error("expiry sweep failed to list policies", "error", err)
		return
	}

	var expired int64
	for _, id := range ids {
		if err := s.Expire(ctx, id); err != nil {
			// Another caller may have expired or resolved it in the meantime.
			if errors.Is(err, ErrNotActive) || errors.Is(err, ErrNotExpired) {
				continue
			}
			slog.Error("expiry sweep failed for policy", "policy_id", id, "error", err)
			continue
		}
		expired++
	}

	s.stats.mu.Lock()
	s.stats.SweepsCompleted++
	s.stats.PoliciesExpired += expired
	s.stats.LastSweep = time.Now()
	s.stats.mu.Unlock()

	if expired > 0 {
		slog.Info("expiry sweep completed", "expired", expired, "candidates", len(ids))
	}
}

// Stats returns a snapshot of sweep statistics.
func (s *ExpirationService) Stats() (sweeps, expired int64, last time.Time) {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()
	return s.stats.SweepsCompleted, s.stats.PoliciesExpired, s.stats.LastSweep
}
