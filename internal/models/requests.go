package models

// BuyPolicyRequest is the body of POST /policies.
type BuyPolicyRequest struct {
	Airline       string `json:"airline"`
	FlightNumber  string `json:"flight_number"`
	FlightDate    string `json:"flight_date"`
	DepartureTime int64  `json:"departure_time"`
	Tier          Tier   `json:"tier"`
	Route         string `json:"route"`
}

// SetTierConfigRequest is the body of the admin tier update. All fields are
// required; partial updates are rejected by the catalog.
type SetTierConfigRequest struct {
	BasePayout           int64 `json:"base_payout"`
	ProbBps              int64 `json:"prob_bps"`
	MarginBps            int64 `json:"margin_bps"`
	PremiumMultiplierBps int64 `json:"premium_multiplier_bps"`
	ThresholdMinutes     int64 `json:"threshold_minutes"`
	Active               bool  `json:"active"`
}

// SetFunctionsConfigRequest updates the verifier dispatch protocol settings.
type SetFunctionsConfigRequest struct {
	CorrelationNamespace string `json:"correlation_namespace"`
	ResponseBudget       int64  `json:"response_budget"`
	VerifierNetworkID    string `json:"verifier_network_id"`
}

// SetExpiryWindowRequest updates the window added to departure time when a
// policy is issued.
type SetExpiryWindowRequest struct {
	Seconds int64 `json:"seconds"`
}

// FundPoolRequest capitalizes the payout pool, in the currency's smallest
// unit.
type FundPoolRequest struct {
	Amount int64 `json:"amount"`
}

// VerificationCallbackRequest is the body posted by an external verifier
// dispatch to the callback endpoint.
type VerificationCallbackRequest struct {
	RequestID    string `json:"request_id"`
	Occurred     bool   `json:"occurred"`
	DelayMinutes *int64 `json:"delay_minutes,omitempty"`
	Error        string `json:"error,omitempty"`
}
