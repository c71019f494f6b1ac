package service

import (
	"context"
	"time"

	"revshare/events"
	"revshare/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockBalanceSource is a mock implementation of BalanceSource
type MockBalanceSource struct {
	mock.Mock
}

func (m *MockBalanceSource) GetBalances(ctx context.Context, offeringID string, period models.Period) ([]models.BalanceWeight, error) {
	args := m.Called(ctx, offeringID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BalanceWeight), args.Error(1)
}

// MockDistributionRepository is a mock implementation of DistributionRepository
type MockDistributionRepository struct {
	mock.Mock
}

func (m *MockDistributionRepository) CreateDistributionRun(ctx context.Context, run *models.DistributionRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockDistributionRepository) CreatePayout(ctx context.Context, payout *models.Payout) error {
	args := m.Called(ctx, payout)
	return args.Error(0)
}

func (m *MockDistributionRepository) GetByID(ctx context.Context, id string) (*models.DistributionRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DistributionRun), args.Error(1)
}

func (m *MockDistributionRepository) ListByOffering(ctx context.Context, offeringID string) ([]*models.DistributionRun, error) {
	args := m.Called(ctx, offeringID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DistributionRun), args.Error(1)
}

func (m *MockDistributionRepository) ListPayoutsByRun(ctx context.Context, runID string) ([]*models.Payout, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payout), args.Error(1)
}

func (m *MockDistributionRepository) ListPayoutsByInvestor(ctx context.Context, investorID string) ([]*models.Payout, error) {
	args := m.Called(ctx, investorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payout), args.Error(1)
}

// MockRevenueReportRepository is a mock implementation of RevenueReportRepository
type MockRevenueReportRepository struct {
	mock.Mock
}

func (m *MockRevenueReportRepository) Create(ctx context.Context, report *models.RevenueReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockRevenueReportRepository) GetByPeriod(ctx context.Context, offeringID string, period models.Period) (*models.RevenueReport, error) {
	args := m.Called(ctx, offeringID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RevenueReport), args.Error(1)
}

func (m *MockRevenueReportRepository) AttachDistributionRun(ctx context.Context, reportID, runID string) error {
	args := m.Called(ctx, reportID, runID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	distributionRepo  DistributionRepository
	revenueReportRepo RevenueReportRepository
	eventPublisher    EventPublisher
}

// SetRepositories wires the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(distributionRepo DistributionRepository, revenueReportRepo RevenueReportRepository, eventPublisher EventPublisher) {
	m.distributionRepo = distributionRepo
	m.revenueReportRepo = revenueReportRepo
	m.eventPublisher = eventPublisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) DistributionRepository() DistributionRepository {
	return m.distributionRepo
}

func (m *MockUnitOfWork) RevenueReportRepository() RevenueReportRepository {
	return m.revenueReportRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventPublisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockDistributionEngine is a mock implementation of DistributionEngine
type MockDistributionEngine struct {
	mock.Mock
}

func (m *MockDistributionEngine) Distribute(ctx context.Context, offeringID string, period models.Period, revenue decimal.Decimal) (*models.DistributionResult, error) {
	args := m.Called(ctx, offeringID, period, revenue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DistributionResult), args.Error(1)
}

func (m *MockDistributionEngine) DistributeInUnit(ctx context.Context, uow UnitOfWork, offeringID string, period models.Period, revenue decimal.Decimal) (*models.DistributionResult, error) {
	args := m.Called(ctx, uow, offeringID, period, revenue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DistributionResult), args.Error(1)
}

func (m *MockDistributionEngine) RecordUnitOutcome(result *models.DistributionResult, err error, started time.Time) {
	m.Called(result, err, started)
}

// MockDistributionRecorder is a mock implementation of DistributionRecorder
type MockDistributionRecorder struct {
	mock.Mock
}

func (m *MockDistributionRecorder) RecordDistribution(outcome string, payoutCount int, amount decimal.Decimal, duration time.Duration) {
	m.Called(outcome, payoutCount, amount, duration)
}
