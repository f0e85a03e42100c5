package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Expiry window bounds: a policy stays verifiable for at least an hour and
// at most two weeks after departure.
const (
	MinExpiryWindow = time.Hour
	MaxExpiryWindow = 14 * 24 * time.Hour

	minResponseBudget = 1
	maxResponseBudget = 10_000_000
)

// AdminService owns the operator-restricted protocol configuration setters.
// Changes only affect policies issued after the change; issued policies keep
// the parameters captured at purchase time.
type AdminService struct {
	state   *EngineState
	custody CustodyLedger
}

func NewAdminService(state *EngineState, custody CustodyLedger) *AdminService {
	return &AdminService{state: state, custody: custody}
}

// FundPool capitalizes the payout pool. Premiums alone cannot cover early
// payouts, so the operator seeds the pool before the first claim can land.
func (s *AdminService) FundPool(ctx context.Context, caller string, amount int64) error {
	if !s.state.isOperator(caller) {
		return ErrNotOperator
	}
	if amount <= 0 {
		return fmt.Errorf("%w: funding amount must be positive", ErrInvalidParameter)
	}

	s.state.lock()
	defer s.state.unlock()
	if err := s.custody.FundPool(ctx, amount); err != nil {
		return fmt.Errorf("failed to fund pool: %w", err)
	}
	slog.Info("payout pool funded", "amount", amount)
	return nil
}

// SetExpiryWindow changes the window added to departure time at issuance.
func (s *AdminService) SetExpiryWindow(caller string, seconds int64) error {
	if !s.state.isOperator(caller) {
		return ErrNotOperator
	}
	window := time.Duration(seconds) * time.Second
	if window < MinExpiryWindow || window > MaxExpiryWindow {
		return fmt.Errorf("%w: expiry window must be in [%s, %s]", ErrInvalidParameter, MinExpiryWindow, MaxExpiryWindow)
	}

	s.state.lock()
	defer s.state.unlock()
	s.state.cfg.ExpiryWindow = window
	slog.Info("expiry window updated", "window", window)
	return nil
}

// SetFunctionsConfig changes the verifier dispatch protocol settings.
func (s *AdminService) SetFunctionsConfig(caller, correlationNamespace string, responseBudget int64, verifierNetworkID string) error {
	if !s.state.isOperator(caller) {
		return ErrNotOperator
	}
	if correlationNamespace == "" {
		return fmt.Errorf("%w: correlation namespace must not be empty", ErrInvalidParameter)
	}
	if responseBudget < minResponseBudget || responseBudget > maxResponseBudget {
		return fmt.Errorf("%w: response budget must be in [%d, %d]", ErrInvalidParameter, minResponseBudget, maxResponseBudget)
	}
	if verifierNetworkID == "" {
		return fmt.Errorf("%w: verifier network id must not be empty", ErrInvalidParameter)
	}

	s.state.lock()
	defer s.state.unlock()
	s.state.cfg.CorrelationNamespace = correlationNamespace
	s.state.cfg.ResponseBudget = responseBudget
	s.state.cfg.VerifierNetworkID = verifierNetworkID
	slog.Info("functions config updated", "namespace", correlationNamespace, "budget", responseBudget, "network", verifierNetworkID)
	return nil
}
