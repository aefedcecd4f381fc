package types

import "time"

// InviteCode is an ambassador's referral code
type InviteCode struct {
	Code         string    `json:"code"`
	AmbassadorID string    `json:"ambassador_id"`
	Active       bool      `json:"active"`
	Uses         int       `json:"uses"`
	CreatedAt    time.Time `json:"created_at"`
}

// Earning is one commission credited to an ambassador
type Earning struct {
	ID           string    `json:"id"`
	AmbassadorID string    `json:"ambassador_id"`
	Amount       float64   `json:"amount"`
	Source       string    `json:"source"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// EarningsSummary aggregates an ambassador's commissions
type EarningsSummary struct {
	AmbassadorID string  `json:"ambassador_id"`
	Total        float64 `json:"total"`
	Count        int     `json:"count"`
	Pending      float64 `json:"pending"`
	Paid         float64 `json:"paid"`
}

// Earning sources
const (
	SourceReferral   = "referral"
	SourceCommission = "commission"
)

// Earning payout states
const (
	EarningPending = "pending"
	EarningPaid    = "paid"
)
