package cancellation

import (
	"time"
)

// Penalty types applied to a reservation deposit when a policy matches.
const (
	PenaltyFullDeposit    = "full_deposit"
	PenaltyPartialDeposit = "partial_deposit"
	PenaltyPercentage     = "percentage"
	PenaltyFixedAmount    = "fixed_amount"
)

// CancellationPolicy defines a penalty rule for cancellations and no-shows.
// HoursBefore is the threshold: the policy applies once the reservation is
// fewer than HoursBefore hours away. PenaltyValue is a percentage (0-100)
// for partial_deposit/percentage and a currency amount for fixed_amount;
// full_deposit ignores it.
type CancellationPolicy struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	VenueID      string    `gorm:"type:varchar(64);index;not null" json:"venue_id"`
	Name         string    `gorm:"type:varchar(120);not null" json:"name"`
	HoursBefore  int       `gorm:"not null" json:"hours_before"`
	PenaltyType  string    `gorm:"type:varchar(20);check:penalty_type IN ('full_deposit', 'partial_deposit', 'percentage', 'fixed_amount');not null" json:"penalty_type"`
	PenaltyValue float64   `gorm:"default:0" json:"penalty_value"`
	Active       bool      `gorm:"default:true;index" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName sets the table name for CancellationPolicy
func (CancellationPolicy) TableName() string {
	return "cancellation_policies"
}

// Outcome is the refund split for a cancellation. Refundable and Forfeited
// always sum to the original deposit amount.
type Outcome struct {
	Refundable float64 `json:"refundable"`
	Forfeited  float64 `json:"forfeited"`
	PolicyID   *uint   `json:"policy_id,omitempty"`
	PolicyName string  `json:"policy_name,omitempty"`
}
