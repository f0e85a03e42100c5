package models

type Tier string

const (
	TierBasic    Tier = "basic"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

type PolicyStatus string

const (
	// PolicyNone is the zero status returned for unknown policy ids.
	PolicyNone      PolicyStatus = "none"
	PolicyActive    PolicyStatus = "active"
	PolicyClaimable PolicyStatus = "claimable"
	PolicyPaidOut   PolicyStatus = "paid_out"
	PolicyExpired   PolicyStatus = "expired"
)

// Terminal reports whether a policy in this status can never change again.
// Claimable is not terminal: it still owes the holder a payout.
func (s PolicyStatus) Terminal() bool {
	return s == PolicyPaidOut || s == PolicyExpired
}

type PolicyEventType string

const (
	PolicyEventIssued     PolicyEventType = "policy_issued"
	PolicyEventPaidOut    PolicyEventType = "policy_paid_out"
	PolicyEventExpired    PolicyEventType = "policy_expired"
	PolicyEventClaimAlert PolicyEventType = "policy_claim_alert"
)
