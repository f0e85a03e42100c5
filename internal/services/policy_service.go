package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"travelsure/internal/models"
	"travelsure/internal/utils"
)

// PolicyService is the policy ledger. It issues policies against the tier
// catalog, debits premiums through the custody ledger, and serves the
// read-only enumeration surface.
type PolicyService struct {
	state       *EngineState
	policyStore PolicyStore
	tiers       *TierService
	custody     CustodyLedger
	notifier    PolicyNotifier
}

func NewPolicyService(state *EngineState, policyStore PolicyStore, tiers *TierService, custody CustodyLedger, notifier PolicyNotifier) *PolicyService {
	return &PolicyService{
		state:       state,
		policyStore: policyStore,
		tiers:       tiers,
		custody:     custody,
		notifier:    notifier,
	}
}

// BuyPolicy issues a new policy for the caller. The premium is debited before
// the record is stored; if the debit fails nothing changes, and if the store
// fails the debit is compensated.
func (s *PolicyService) BuyPolicy(ctx context.Context, holder string, req models.BuyPolicyRequest) (int64, error) {
	airline, flightNum, err := utils.ParseFlightNumber(req.Airline + req.FlightNumber)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	if _, err := utils.ValidateFlightDate(req.FlightDate); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	flightKey := utils.FlightKey(airline, flightNum, req.FlightDate)
	departure := time.Unix(req.DepartureTime, 0).UTC()

	cfg, err := s.tiers.GetTierConfig(ctx, req.Tier)
	if err != nil {
		return 0, err
	}

	s.state.lock()
	defer s.state.unlock()

	now := s.state.now()
	if !departure.After(now) {
		return 0, fmt.Errorf("%w: departure %s is not after %s", ErrDeparturePassed, departure, now)
	}

	exists, err := s.policyStore.HasNonTerminal(ctx, holder, flightKey)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing policies: %w", err)
	}
	if exists {
		return 0, fmt.Errorf("%w: holder %s flight %s", ErrDuplicateInsurance, holder, flightKey)
	}

	premium := ComputePremium(cfg)
	if err := s.custody.TransferIn(ctx, holder, premium); err != nil {
		return 0, fmt.Errorf("failed to collect premium of %d: %w", premium, err)
	}

	policy := models.Policy{
		Holder:           holder,
		FlightKey:        flightKey,
		DepartureTime:    departure,
		Expiry:           departure.Add(s.state.cfg.ExpiryWindow),
		Tier:             req.Tier,
		ThresholdMinutes: cfg.ThresholdMinutes,
		Premium:          premium,
		Payout:           cfg.BasePayout,
		Status:           models.PolicyActive,
		FlightNumber:     airline + flightNum,
		Route:            req.Route,
		FlightDate:       req.FlightDate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	id, err := s.policyStore.Create(ctx, policy)
	if err != nil {
		// Premium was already collected; hand it back before failing.
		if refundErr := s.custody.TransferOut(ctx, holder, premium); refundErr != nil {
			slog.Error("failed to refund premium after store failure", "holder", holder, "premium", premium, "error", refundErr)
		}
		return 0, fmt.Errorf("failed to store policy: %w", err)
	}
	policy.ID = id

	slog.Info("policy issued", "policy_id", id, "holder", holder, "flight_key", flightKey, "tier", req.Tier, "premium", premium, "payout", policy.Payout)
	s.publish(ctx, models.PolicyEventIssued, policy)
	return id, nil
}

// Policies returns the policy record for an id. Unknown ids return a zeroed
// record with status none rather than an error, so callers can tell "no such
// policy" apart from a lookup failure.
func (s *PolicyService) Policies(ctx context.Context, id int64) (models.Policy, error) {
	policy, ok, err := s.policyStore.Get(ctx, id)
	if err != nil {
		return models.Policy{}, fmt.Errorf("failed to load policy %d: %w", id, err)
	}
	if !ok {
		return models.Policy{ID: id, Status: models.PolicyNone}, nil
	}
	return policy, nil
}

// PolicyCountOf returns how many policies a holder has ever purchased.
func (s *PolicyService) PolicyCountOf(ctx context.Context, holder string) (int64, error) {
	count, err := s.policyStore.CountByHolder(ctx, holder)
	if err != nil {
		return 0, fmt.Errorf("failed to count policies for %s: %w", holder, err)
	}
	return count, nil
}

// PolicyIDOfOwnerByIndex returns the holder's i-th policy id in purchase
// order, backed by the append-only per-holder index.
func (s *PolicyService) PolicyIDOfOwnerByIndex(ctx context.Context, holder string, index int64) (int64, error) {
	id, ok, err := s.policyStore.IDByHolderIndex(ctx, holder, index)
	if err != nil {
		return 0, fmt.Errorf("failed to read holder index: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s has no policy at index %d", ErrUnknownPolicy, holder, index)
	}
	return id, nil
}

func (s *PolicyService) publish(ctx context.Context, eventType models.PolicyEventType, policy models.Policy) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishPolicyEvent(ctx, eventType, policy); err != nil {
		slog.Error("failed to publish policy event", "event", eventType, "policy_id", policy.ID, "error", err)
	}
}
