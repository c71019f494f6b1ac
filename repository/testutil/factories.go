package testutil

import (
	"time"

	"revshare/models"

	"github.com/shopspring/decimal"
)

// TestPeriod returns a fixed quarter in UTC
func TestPeriod() models.Period {
	return models.Period{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

// CreateTestSnapshot creates a snapshot row for the given offering and period
func CreateTestSnapshot(offeringID, investorID string, balance string, period models.Period) *models.BalanceSnapshot {
	return &models.BalanceSnapshot{
		OfferingID:  offeringID,
		InvestorID:  investorID,
		Balance:     decimal.RequireFromString(balance),
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
	}
}

// CreateTestInvestment creates an investment made at the given time
func CreateTestInvestment(offeringID, investorID string, tokens string, investedAt time.Time) *models.Investment {
	return &models.Investment{
		OfferingID:  offeringID,
		InvestorID:  investorID,
		TokenAmount: decimal.RequireFromString(tokens),
		InvestedAt:  investedAt,
	}
}

// CreateTestDistributionRun creates a pending run dated at the end of the test period
func CreateTestDistributionRun(offeringID string, total string) *models.DistributionRun {
	return &models.DistributionRun{
		OfferingID:       offeringID,
		TotalAmount:      decimal.RequireFromString(total),
		DistributionDate: TestPeriod().End,
		Status:           models.DistributionStatusPending,
	}
}

// CreateTestRevenueReport creates a report for the given offering and period
func CreateTestRevenueReport(offeringID string, amount string, period models.Period) *models.RevenueReport {
	return &models.RevenueReport{
		OfferingID:  offeringID,
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		Amount:      decimal.RequireFromString(amount),
		ReportedBy:  "issuer-test",
	}
}
