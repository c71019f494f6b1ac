package service

import (
	"context"
	"time"

	"revshare/events"
	"revshare/models"

	"github.com/shopspring/decimal"
)

// BalanceSource supplies investor weights for an offering and period
type BalanceSource interface {
	// GetBalances returns one internally consistent snapshot of weights.
	// Every balance is >= 0; the result may be empty.
	GetBalances(ctx context.Context, offeringID string, period models.Period) ([]models.BalanceWeight, error)
}

// DistributionRepository persists distribution runs and payouts
type DistributionRepository interface {
	// CreateDistributionRun inserts a run and fills its ID and timestamps
	CreateDistributionRun(ctx context.Context, run *models.DistributionRun) error

	// CreatePayout inserts a payout and fills its ID and timestamps
	CreatePayout(ctx context.Context, payout *models.Payout) error

	// GetByID retrieves a run, returning nil when it does not exist
	GetByID(ctx context.Context, id string) (*models.DistributionRun, error)

	// ListByOffering returns all runs for an offering, newest first
	ListByOffering(ctx context.Context, offeringID string) ([]*models.DistributionRun, error)

	// ListPayoutsByRun returns the payouts of a run in creation order
	ListPayoutsByRun(ctx context.Context, runID string) ([]*models.Payout, error)

	// ListPayoutsByInvestor returns all payouts for an investor, newest first
	ListPayoutsByInvestor(ctx context.Context, investorID string) ([]*models.Payout, error)
}

// RevenueReportRepository stores revenue reports, at most one per offering and period
type RevenueReportRepository interface {
	// Create inserts a report, returning ErrDuplicateReport if the period was already reported
	Create(ctx context.Context, report *models.RevenueReport) error

	// GetByPeriod retrieves the report for an offering and period, nil when absent
	GetByPeriod(ctx context.Context, offeringID string, period models.Period) (*models.RevenueReport, error)

	// AttachDistributionRun links a report to the run created for it
	AttachDistributionRun(ctx context.Context, reportID, runID string) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	DistributionRepository() DistributionRepository
	RevenueReportRepository() RevenueReportRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// DistributionEngine splits revenue across investor weights and persists the result
type DistributionEngine interface {
	// Distribute computes and persists one distribution run in its own unit of work
	Distribute(ctx context.Context, offeringID string, period models.Period, revenue decimal.Decimal) (*models.DistributionResult, error)

	// DistributeInUnit does the same inside a unit of work the caller has begun.
	// The caller owns Commit and Rollback.
	DistributeInUnit(ctx context.Context, uow UnitOfWork, offeringID string, period models.Period, revenue decimal.Decimal) (*models.DistributionResult, error)

	// RecordUnitOutcome reports a successful DistributeInUnit call once the caller's unit of
	// work has committed (err nil) or failed afterwards. Failures inside DistributeInUnit are
	// already reported.
	RecordUnitOutcome(result *models.DistributionResult, err error, started time.Time)
}

// RevenueReportService is the call site that turns reported revenue into a distribution
type RevenueReportService interface {
	// Submit records the report, distributes it and emits completion events after commit
	Submit(ctx context.Context, req models.RevenueReportRequest) (*models.DistributionResult, error)
}

// DistributionHistoryService provides read-only reporting over persisted distributions
type DistributionHistoryService interface {
	// GetDistribution returns a run with its payouts
	GetDistribution(ctx context.Context, runID string) (*models.DistributionResult, error)

	// ListOfferingDistributions returns all runs for an offering, newest first
	ListOfferingDistributions(ctx context.Context, offeringID string) ([]*models.DistributionRun, error)

	// ListInvestorPayouts returns all payouts for an investor, newest first
	ListInvestorPayouts(ctx context.Context, investorID string) ([]*models.Payout, error)
}
