package services

import (
	"context"
	"fmt"
	"log/slog"

	"travelsure/internal/models"
)

// VerificationService coordinates the request/response protocol with the
// external delay verifier. RequestVerification is the engine's one suspension
// point: it records a pending request and returns, and the matching callback
// resolves the policy arbitrarily later.
type VerificationService struct {
	state        *EngineState
	policyStore  PolicyStore
	requestStore RequestStore
	custody      CustodyLedger
	dispatcher   VerifierDispatcher
	notifier     PolicyNotifier
}

func NewVerificationService(state *EngineState, policyStore PolicyStore, requestStore RequestStore, custody CustodyLedger, dispatcher VerifierDispatcher, notifier PolicyNotifier) *VerificationService {
	return &VerificationService{
		state:        state,
		policyStore:  policyStore,
		requestStore: requestStore,
		custody:      custody,
		dispatcher:   dispatcher,
		notifier:     notifier,
	}
}

// RequestVerification dispatches a delay check for the caller's policy. The
// window is inclusive on both ends: verification is allowed exactly at
// departure and exactly at expiry.
func (s *VerificationService) RequestVerification(ctx context.Context, caller string, policyID int64) (string, error) {
	s.state.lock()
	defer s.state.unlock()

	policy, ok, err := s.policyStore.Get(ctx, policyID)
	if err != nil {
		return "", fmt.Errorf("failed to load policy %d: %w", policyID, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownPolicy, policyID)
	}
	if policy.Holder != caller {
		return "", fmt.Errorf("%w: policy %d", ErrNotHolder, policyID)
	}
	if policy.Status != models.PolicyActive {
		return "", fmt.Errorf("%w: policy %d is %s", ErrNotActive, policyID, policy.Status)
	}

	now := s.state.now()
	if now.Before(policy.DepartureTime) {
		return "", fmt.Errorf("%w: departure at %s", ErrTooEarly, policy.DepartureTime)
	}
	if now.After(policy.Expiry) {
		return "", fmt.Errorf("%w: expired at %s", ErrExpiredWindow, policy.Expiry)
	}

	pending, err := s.requestStore.LiveForPolicy(ctx, policyID)
	if err != nil {
		return "", fmt.Errorf("failed to check pending requests: %w", err)
	}
	if pending {
		return "", fmt.Errorf("%w: policy %d", ErrVerificationPending, policyID)
	}

	requestID, err := s.dispatcher.Dispatch(ctx, s.state.cfg.CorrelationNamespace, policyID, policy.FlightKey, policy.DepartureTime)
	if err != nil {
		return "", fmt.Errorf("failed to dispatch verification: %w", err)
	}
	if err := s.requestStore.Put(ctx, models.VerificationRequest{
		RequestID: requestID,
		PolicyID:  policyID,
		CreatedAt: now,
	}); err != nil {
		return "", fmt.Errorf("failed to record verification request: %w", err)
	}

	slog.Info("verification requested", "policy_id", policyID, "request_id", requestID, "flight_key", policy.FlightKey)
	return requestID, nil
}

// OnVerificationResult handles the verifier's answer. The pending request is
// consumed before anything else, so a replayed request id is rejected and a
// duplicate delivery can never pay twice. A callback for a policy that is no
// longer active is a no-op.
func (s *VerificationService) OnVerificationResult(ctx context.Context, result models.VerificationResult) error {
	s.state.lock()
	defer s.state.unlock()

	req, ok, err := s.requestStore.Consume(ctx, result.RequestID)
	if err != nil {
		return fmt.Errorf("failed to consume verification request: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRequest, result.RequestID)
	}

	policy, ok, err := s.policyStore.Get(ctx, req.PolicyID)
	if err != nil {
		return fmt.Errorf("failed to load policy %d: %w", req.PolicyID, err)
	}
	if !ok || policy.Status != models.PolicyActive {
		slog.Warn("verification result for non-active policy ignored", "policy_id", req.PolicyID, "request_id", result.RequestID)
		return nil
	}

	if !payoutDue(policy, result) {
		// No evidence of a qualifying delay. The policy stays active and the
		// holder may request verification again within the window.
		slog.Info("verification resolved without payout", "policy_id", policy.ID, "occurred", result.Occurred, "delay_minutes", result.DelayMinutes)
		return nil
	}

	if err := s.custody.TransferOut(ctx, policy.Holder, policy.Payout); err != nil {
		// The claim stands but the money did not move. Park the policy as
		// claimable and alert the operator; SettleClaim retries the transfer.
		if updErr := s.policyStore.UpdateStatus(ctx, policy.ID, models.PolicyClaimable, s.state.now()); updErr != nil {
			slog.Error("failed to mark policy claimable", "policy_id", policy.ID, "error", updErr)
		}
		policy.Status = models.PolicyClaimable
		s.publish(ctx, models.PolicyEventClaimAlert, policy)
		slog.Error("payout transfer failed, operator intervention required", "policy_id", policy.ID, "holder", policy.Holder, "payout", policy.Payout, "error", err)
		return fmt.Errorf("%w: payout of %d to %s: %v", ErrTransferFailed, policy.Payout, policy.Holder, err)
	}

	if err := s.policyStore.UpdateStatus(ctx, policy.ID, models.PolicyPaidOut, s.state.now()); err != nil {
		return fmt.Errorf("failed to mark policy paid out: %w", err)
	}
	policy.Status = models.PolicyPaidOut
	s.publish(ctx, models.PolicyEventPaidOut, policy)
	slog.Info("policy paid out", "policy_id", policy.ID, "holder", policy.Holder, "payout", policy.Payout)
	return nil
}

// OnVerificationError handles an error delivery from the dispatch mechanism.
// The request is consumed but the policy stays active: no evidence is not a
// failed claim, and the holder can retry within the window.
func (s *VerificationService) OnVerificationError(ctx context.Context, requestID, reason string) error {
	s.state.lock()
	defer s.state.unlock()

	req, ok, err := s.requestStore.Consume(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to consume verification request: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRequest, requestID)
	}

	slog.Warn("verification returned an error, policy left active", "policy_id", req.PolicyID, "request_id", requestID, "reason", reason)
	return nil
}

// SettleClaim retries the payout transfer for a claimable policy. Operator
// only: it exists for the stuck-transfer case surfaced by OnVerificationResult.
func (s *VerificationService) SettleClaim(ctx context.Context, caller string, policyID int64) error {
	if !s.state.isOperator(caller) {
		return ErrNotOperator
	}

	s.state.lock()
	defer s.state.unlock()

	policy, ok, err := s.policyStore.Get(ctx, policyID)
	if err != nil {
		return fmt.Errorf("failed to load policy %d: %w", policyID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownPolicy, policyID)
	}
	if policy.Status != models.PolicyClaimable {
		return fmt.Errorf("%w: policy %d is %s", ErrNotClaimable, policyID, policy.Status)
	}

	if err := s.custody.TransferOut(ctx, policy.Holder, policy.Payout); err != nil {
		return fmt.Errorf("%w: payout of %d to %s: %v", ErrTransferFailed, policy.Payout, policy.Holder, err)
	}
	if err := s.policyStore.UpdateStatus(ctx, policyID, models.PolicyPaidOut, s.state.now()); err != nil {
		return fmt.Errorf("failed to mark policy paid out: %w", err)
	}
	policy.Status = models.PolicyPaidOut
	s.publish(ctx, models.PolicyEventPaidOut, policy)
	slog.Info("claim settled", "policy_id", policyID, "holder", policy.Holder, "payout", policy.Payout)
	return nil
}

// payoutDue applies the decision rule. Verifiers come in two shapes: some
// report only a boolean delayed flag, some add the delay magnitude. When the
// magnitude is present it must meet the policy's threshold; when absent the
// flag alone decides.
func payoutDue(policy models.Policy, result models.VerificationResult) bool {
	if !result.Occurred {
		return false
	}
	if result.DelayMinutes == nil {
		return true
	}
	return *result.DelayMinutes >= policy.ThresholdMinutes
}

func (s *VerificationService) publish(ctx context.Context, eventType models.PolicyEventType, policy models.Policy) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishPolicyEvent(ctx, eventType, policy); err != nil {
		slog.Error("failed to publish policy event", "event", eventType, "policy_id", policy.ID, "error", err)
	}
}
