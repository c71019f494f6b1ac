package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DistributionStatus represents the lifecycle state of a distribution run or payout
type DistributionStatus string

const (
	DistributionStatusPending    DistributionStatus = "pending"
	DistributionStatusProcessing DistributionStatus = "processing"
	DistributionStatusCompleted  DistributionStatus = "completed"
	DistributionStatusFailed     DistributionStatus = "failed"
)

// IsValid reports whether the status is one of the known states
func (s DistributionStatus) IsValid() bool {
	switch s {
	case DistributionStatusPending, DistributionStatusProcessing,
		DistributionStatusCompleted, DistributionStatusFailed:
		return true
	}
	return false
}

// DistributionRun is one execution of the revenue allocation for an offering and period.
// TotalAmount is fixed at creation.
type DistributionRun struct {
	ID               string             `db:"id"`
	OfferingID       string             `db:"offering_id"`
	TotalAmount      decimal.Decimal    `db:"total_amount"`
	DistributionDate time.Time          `db:"distribution_date"`
	Status           DistributionStatus `db:"status"`
	CreatedAt        time.Time          `db:"created_at"`
	UpdatedAt        time.Time          `db:"updated_at"`
}

// DistributionResult is a run together with its payouts in creation order
type DistributionResult struct {
	Run     *DistributionRun
	Payouts []*Payout
}

// PayoutTotal sums the payout amounts of the result
func (r *DistributionResult) PayoutTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range r.Payouts {
		total = total.Add(p.Amount)
	}
	return total
}
