package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period is the reporting window a revenue amount belongs to
type Period struct {
	Start time.Time
	End   time.Time
}

// IsValid reports whether the period has both bounds and starts before it ends
func (p Period) IsValid() bool {
	return !p.Start.IsZero() && !p.End.IsZero() && p.Start.Before(p.End)
}

// BalanceWeight is a point-in-time measure of an investor's stake in an offering
type BalanceWeight struct {
	InvestorID string
	Balance    decimal.Decimal
}

// BalanceSnapshot is a stored balance weight captured for an offering and period
type BalanceSnapshot struct {
	ID          string          `db:"id"`
	OfferingID  string          `db:"offering_id"`
	InvestorID  string          `db:"investor_id"`
	Balance     decimal.Decimal `db:"balance"`
	PeriodStart time.Time       `db:"period_start"`
	PeriodEnd   time.Time       `db:"period_end"`
	CapturedAt  time.Time       `db:"captured_at"`
}

// Investment is a single token purchase by an investor
type Investment struct {
	ID          string          `db:"id"`
	OfferingID  string          `db:"offering_id"`
	InvestorID  string          `db:"investor_id"`
	TokenAmount decimal.Decimal `db:"token_amount"`
	InvestedAt  time.Time       `db:"invested_at"`
}
