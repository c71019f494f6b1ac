package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueReport records that an issuer reported revenue for an offering and period.
// At most one report exists per offering and period.
type RevenueReport struct {
	ID                string          `db:"id"`
	OfferingID        string          `db:"offering_id"`
	PeriodStart       time.Time       `db:"period_start"`
	PeriodEnd         time.Time       `db:"period_end"`
	Amount            decimal.Decimal `db:"amount"`
	ReportedBy        string          `db:"reported_by"`
	DistributionRunID *string         `db:"distribution_run_id"`
	CreatedAt         time.Time       `db:"created_at"`
}

// RevenueReportRequest is the input accepted from the revenue reporting call site
type RevenueReportRequest struct {
	OfferingID string
	Period     Period
	Amount     decimal.Decimal
	ReportedBy string
}
