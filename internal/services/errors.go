package services

import "errors"

// Sentinel errors for the policy engine. Handlers map these to API error
// codes with errors.Is; services wrap them with context via fmt.Errorf and %w.
var (
	ErrUnknownTier         = errors.New("unknown or inactive tier")
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrDuplicateInsurance  = errors.New("duplicate insurance for this flight")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrTransferFailed      = errors.New("custody transfer failed")
	ErrUnknownPolicy       = errors.New("unknown policy")
	ErrNotHolder           = errors.New("caller is not the policy holder")
	ErrNotActive           = errors.New("policy is not active")
	ErrTooEarly            = errors.New("verification window not yet open")
	ErrExpiredWindow       = errors.New("verification window has closed")
	ErrVerificationPending = errors.New("verification already pending for this policy")
	ErrUnknownRequest      = errors.New("unknown or already consumed verification request")
	ErrNotExpired          = errors.New("policy has not expired yet")
	ErrNotClaimable        = errors.New("policy has no pending claim")
	ErrNotOperator         = errors.New("caller is not the operator")
	ErrDeparturePassed     = errors.New("departure time must be in the future")
)
