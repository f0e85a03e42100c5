package models

import "time"

// Policy is one purchased flight-delay cover. Premium, payout and threshold
// are copied from the tier at purchase time and never change afterwards, so
// later tier updates cannot alter existing obligations.
type Policy struct {
	ID               int64        `json:"id" db:"id"`
	Holder           string       `json:"holder" db:"holder"`
	FlightKey        string       `json:"flight_key" db:"flight_key"`
	DepartureTime    time.Time    `json:"departure_time" db:"departure_time"`
	Expiry           time.Time    `json:"expiry" db:"expiry"`
	Tier             Tier         `json:"tier" db:"tier"`
	ThresholdMinutes int64        `json:"threshold_minutes" db:"threshold_minutes"`
	Premium          int64        `json:"premium" db:"premium"`
	Payout           int64        `json:"payout" db:"payout"`
	Status           PolicyStatus `json:"status" db:"status"`

	// Descriptive fields, kept for display and audit only.
	FlightNumber string `json:"flight_number" db:"flight_number"`
	Route        string `json:"route" db:"route"`
	FlightDate   string `json:"flight_date" db:"flight_date"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// VerificationRequest correlates an opaque dispatch request id with the
// policy that asked for verification. Consumed exactly once by the callback.
type VerificationRequest struct {
	RequestID string    `json:"request_id" db:"request_id"`
	PolicyID  int64     `json:"policy_id" db:"policy_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// VerificationResult is the verifier's answer. DelayMinutes is nil when the
// verifier only reports a boolean delayed flag without a magnitude.
type VerificationResult struct {
	RequestID    string `json:"request_id"`
	Occurred     bool   `json:"occurred"`
	DelayMinutes *int64 `json:"delay_minutes,omitempty"`
}
