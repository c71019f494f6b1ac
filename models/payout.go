package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payout is one investor's allocation within a distribution run
type Payout struct {
	ID                string             `db:"id"`
	DistributionRunID string             `db:"distribution_run_id"`
	InvestorID        string             `db:"investor_id"`
	Amount            decimal.Decimal    `db:"amount"`
	Status            DistributionStatus `db:"status"`
	TransactionHash   *string            `db:"transaction_hash"`
	CreatedAt         time.Time          `db:"created_at"`
	UpdatedAt         time.Time          `db:"updated_at"`
}
