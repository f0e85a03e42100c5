package handlers

import (
	"errors"
	"net/http"

	"travelsure/internal/services"
)

// statusAndCode maps engine sentinel errors to HTTP status and API error
// codes for the response envelope.
func statusAndCode(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrUnknownTier):
		return http.StatusNotFound, "UNKNOWN_TIER"
	case errors.Is(err, services.ErrInvalidParameter):
		return http.StatusBadRequest, "INVALID_PARAMETER"
	case errors.Is(err, services.ErrDuplicateInsurance):
		return http.StatusConflict, "DUPLICATE_INSURANCE"
	case errors.Is(err, services.ErrInsufficientFunds):
		return http.StatusPaymentRequired, "INSUFFICIENT_FUNDS"
	case errors.Is(err, services.ErrTransferFailed):
		return http.StatusBadGateway, "TRANSFER_FAILED"
	case errors.Is(err, services.ErrUnknownPolicy):
		return http.StatusNotFound, "UNKNOWN_POLICY"
	case errors.Is(err, services.ErrNotHolder):
		return http.StatusForbidden, "NOT_HOLDER"
	case errors.Is(err, services.ErrNotOperator):
		return http.StatusForbidden, "NOT_OPERATOR"
	case errors.Is(err, services.ErrNotActive):
		return http.StatusConflict, "NOT_ACTIVE"
	case errors.Is(err, services.ErrTooEarly):
		return http.StatusConflict, "TOO_EARLY"
	case errors.Is(err, services.ErrExpiredWindow):
		return http.StatusConflict, "EXPIRED_WINDOW"
	case errors.Is(err, services.ErrVerificationPending):
		return http.StatusConflict, "VERIFICATION_PENDING"
	case errors.Is(err, services.ErrUnknownRequest):
		return http.StatusNotFound, "UNKNOWN_REQUEST"
	case errors.Is(err, services.ErrNotExpired):
		return http.StatusConflict, "NOT_EXPIRED"
	case errors.Is(err, services.ErrNotClaimable):
		return http.StatusConflict, "NOT_CLAIMABLE"
	case errors.Is(err, services.ErrDeparturePassed):
		return http.StatusBadRequest, "DEPARTURE_PASSED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
