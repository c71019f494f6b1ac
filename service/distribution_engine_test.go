package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"revshare/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testPeriod = models.Period{
	Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
}

type engineFixture struct {
	factory  *MockUnitOfWorkFactory
	uow      *MockUnitOfWork
	repo     *MockDistributionRepository
	source   *MockBalanceSource
	recorder *MockDistributionRecorder
	engine   DistributionEngine
}

func newEngineFixture() *engineFixture {
	f := &engineFixture{
		factory:  new(MockUnitOfWorkFactory),
		uow:      new(MockUnitOfWork),
		repo:     new(MockDistributionRepository),
		source:   new(MockBalanceSource),
		recorder: new(MockDistributionRecorder),
	}
	f.uow.SetRepositories(f.repo, nil, nil)
	f.engine = NewDistributionEngine(f.factory, f.source, f.recorder)
	return f
}

// expectRunCreated assigns sequential ids the way the database would
func (f *engineFixture) expectRunCreated(runID string) {
	f.repo.On("CreateDistributionRun", mock.Anything, mock.AnythingOfType("*models.DistributionRun")).
		Run(func(args mock.Arguments) {
			run := args.Get(1).(*models.DistributionRun)
			run.ID = runID
		}).Return(nil).Once()
}

func (f *engineFixture) expectPayoutsCreated() {
	seq := 0
	f.repo.On("CreatePayout", mock.Anything, mock.AnythingOfType("*models.Payout")).
		Run(func(args mock.Arguments) {
			seq++
			payout := args.Get(1).(*models.Payout)
			payout.ID = fmt.Sprintf("payout-%d", seq)
		}).Return(nil)
}

func TestDistributionEngine_Distribute_Success(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()

	f.source.On("GetBalances", ctx, "offering-1", testPeriod).Return(weightsOf("70", "30"), nil)
	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Commit").Return(nil)
	f.uow.On("Rollback").Return(nil)
	f.expectRunCreated("run-1")
	f.expectPayoutsCreated()
	f.recorder.On("RecordDistribution", OutcomeSuccess, 2, mock.AnythingOfType("decimal.Decimal"), mock.AnythingOfType("time.Duration")).Return()

	result, err := f.engine.Distribute(ctx, "offering-1", testPeriod, dec("100"))

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "run-1", result.Run.ID)
	assert.Equal(t, "offering-1", result.Run.OfferingID)
	assert.Equal(t, "100.00", result.Run.TotalAmount.StringFixed(CentPlaces))
	assert.Equal(t, testPeriod.End, result.Run.DistributionDate)
	assert.Equal(t, models.DistributionStatusPending, result.Run.Status)

	require.Len(t, result.Payouts, 2)
	assert.Equal(t, "i1", result.Payouts[0].InvestorID)
	assert.Equal(t, "70.00", result.Payouts[0].Amount.StringFixed(CentPlaces))
	assert.Equal(t, "i2", result.Payouts[1].InvestorID)
	assert.Equal(t, "30.00", result.Payouts[1].Amount.StringFixed(CentPlaces))
	for _, p := range result.Payouts {
		assert.Equal(t, "run-1", p.DistributionRunID)
		assert.Equal(t, models.DistributionStatusPending, p.Status)
	}
	assert.True(t, result.PayoutTotal().Equal(result.Run.TotalAmount))

	f.factory.AssertExpectations(t)
	f.uow.AssertExpectations(t)
	f.repo.AssertExpectations(t)
	f.repo.AssertNumberOfCalls(t, "CreatePayout", 2)
	f.recorder.AssertExpectations(t)
}

func TestDistributionEngine_Distribute_PayoutsFollowBalanceSourceOrder(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()

	weights := weightsOf("1", "2", "2", "2")
	f.source.On("GetBalances", ctx, "offering-1", testPeriod).Return(weights, nil)
	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Commit").Return(nil)
	f.uow.On("Rollback").Return(nil)
	f.expectRunCreated("run-1")

	var written []string
	f.repo.On("CreatePayout", mock.Anything, mock.AnythingOfType("*models.Payout")).
		Run(func(args mock.Arguments) {
			written = append(written, args.Get(1).(*models.Payout).InvestorID)
		}).Return(nil)
	f.recorder.On("RecordDistribution", OutcomeSuccess, 4, mock.Anything, mock.Anything).Return()

	result, err := f.engine.Distribute(ctx, "offering-1", testPeriod, dec("10"))

	require.NoError(t, err)
	assert.Equal(t, []string{"i1", "i2", "i3", "i4"}, written)
	amounts := make([]string, len(result.Payouts))
	for i, p := range result.Payouts {
		amounts[i] = p.Amount.StringFixed(CentPlaces)
	}
	assert.Equal(t, []string{"1.43", "2.85", "2.86", "2.86"}, amounts)
}

func TestDistributionEngine_Distribute_RoundsRevenueToCents(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()

	f.source.On("GetBalances", ctx, "offering-1", testPeriod).Return(weightsOf("1"), nil)
	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Commit").Return(nil)
	f.uow.On("Rollback").Return(nil)
	f.expectRunCreated("run-1")
	f.expectPayoutsCreated()
	f.recorder.On("RecordDistribution", OutcomeSuccess, 1, mock.Anything, mock.Anything).Return()

	result, err := f.engine.Distribute(ctx, "offering-1", testPeriod, dec("99.995"))

	require.NoError(t, err)
	assert.Equal(t, "100.00", result.Run.TotalAmount.StringFixed(CentPlaces))
	assert.Equal(t, "100.00", result.Payouts[0].Amount.StringFixed(CentPlaces))
}

func TestDistributionEngine_Distribute_InvalidAmount(t *testing.T) {
	for _, amount := range []string{"0", "-5", "0.004"} {
		t.Run(amount, func(t *testing.T) {
			ctx := context.Background()
			f := newEngineFixture()
			f.recorder.On("RecordDistribution", OutcomeRejected, 0, mock.Anything, mock.Anything).Return()

			result, err := f.engine.Distribute(ctx, "offering-1", testPeriod, dec(amount))

			assert.Nil(t, result)
			assert.ErrorIs(t, err, ErrInvalidAmount)
			assert.True(t, IsValidationError(err))

			// Rejected before any side effect
			f.source.AssertNotCalled(t, "GetBalances", mock.Anything, mock.Anything, mock.Anything)
			f.factory.AssertNotCalled(t, "Create")
			f.recorder.AssertExpectations(t)
		})
	}
}

func TestDistributionEngine_Distribute_NoBalanceSource(t *testing.T) {
	ctx := context.Background()
	factory := new(MockUnitOfWorkFactory)
	engine := NewDistributionEngine(factory, nil, nil)

	result, err := engine.Distribute(ctx, "offering-1", testPeriod, dec("100"))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNoBalanceSource)
	assert.False(t, IsValidationError(err))
	factory.AssertNotCalled(t, "Create")
}

func TestDistributionEngine_Distribute_AllocationErrorsPersistNothing(t *testing.T) {
	tests := []struct {
		name    string
		weights []models.BalanceWeight
		wantErr error
	}{
		{name: "no investors", weights: []models.BalanceWeight{}, wantErr: ErrNoInvestors},
		{name: "zero total balance", weights: weightsOf("0", "0"), wantErr: ErrZeroTotalBalance},
		{name: "negative balance", weights: weightsOf("5", "-1"), wantErr: ErrNegativeBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newEngineFixture()
			f.source.On("GetBalances", ctx, "offering-1", testPeriod).Return(tt.weights, nil)
			f.recorder.On("RecordDistribution", OutcomeRejected, 0, mock.Anything, mock.Anything).Return()

			result, err := f.engine.Distribute(ctx, "offering-1", testPeriod, dec("100"))

			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)
			f.factory.AssertNotCalled(t, "Create")
			f.repo.AssertNotCalled(t, "CreateDistributionRun", mock.Anything, mock.Anything)
			f.recorder.AssertExpectations(t)
		})
	}
}

func TestDistributionEngine_Distribute_BalanceSourceErrorPropagates(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()

	sourceErr := errors.New("connection refused")
	f.source.On("GetBalances", ctx, "offering-1", testPeriod).Return(nil, sourceErr)
	f.recorder.On("RecordDistribution", OutcomeFailed, 0, mock.Anything, mock.Anything).Return()

	result, err := f.engine.Distribute(ctx, "offering-1", testPeriod, dec("100"))

	assert.Nil(t, result)
	assert.Same(t, sourceErr, err)
	f.factory.AssertNotCalled(t, "Create")
	f.recorder.AssertExpectations(t)
}

func TestDistributionEngine_Distribute_RunWriteFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()

	storeErr := errors.New("disk full")
	f.source.On("GetBalances", ctx, "offering-1", testPeriod).Return(weightsOf("1", "1"), nil)
	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Rollback").Return(nil)
	f.repo.On("CreateDistributionRun", ctx, mock.Anything).Return(storeErr)
	f.recorder.On("RecordDistribution", OutcomeFailed, 0, mock.Anything, mock.Anything).Return()

	result, err := f.engine.Distribute(ctx, "offering-1", testPeriod, dec("100"))

	assert.Nil(t, result)
	assert.Same(t, storeErr, err)
	f.uow.AssertExpectations(t)
	f.uow.AssertNotCalled(t, "Commit")
	f.repo.AssertNotCalled(t, "CreatePayout", mock.Anything, mock.Anything)
}

func TestDistributionEngine_Distribute_PayoutWriteFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()

	storeErr := errors.New("constraint violation")
	f.source.On("GetBalances", ctx, "offering-1", testPeriod).Return(weightsOf("1", "1", "1"), nil)
	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Rollback").Return(nil)
	f.expectRunCreated("run-1")
	f.repo.On("CreatePayout", ctx, mock.Anything).Return(nil).Once()
	f.repo.On("CreatePayout", ctx, mock.Anything).Return(storeErr).Once()
	f.recorder.On("RecordDistribution", OutcomeFailed, 0, mock.Anything, mock.Anything).Return()

	result, err := f.engine.Distribute(ctx, "offering-1", testPeriod, dec("100"))

	assert.Nil(t, result)
	assert.Same(t, storeErr, err)
	f.repo.AssertNumberOfCalls(t, "CreatePayout", 2)
	f.uow.AssertCalled(t, "Rollback")
	f.uow.AssertNotCalled(t, "Commit")
}

func TestDistributionEngine_Distribute_BeginAndCommitFailures(t *testing.T) {
	t.Run("begin", func(t *testing.T) {
		ctx := context.Background()
		f := newEngineFixture()
		f.source.On("GetBalances", ctx, "offering-1", testPeriod).Return(weightsOf("1"), nil)
		f.factory.On("Create").Return(f.uow)
		f.uow.On("Begin", ctx).Return(errors.New("pool exhausted"))
		f.recorder.On("RecordDistribution", OutcomeFailed, 0, mock.Anything, mock.Anything).Return()

		_, err := f.engine.Distribute(ctx, "offering-1", testPeriod, dec("100"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to begin transaction")
		f.repo.AssertNotCalled(t, "CreateDistributionRun", mock.Anything, mock.Anything)
	})

	t.Run("commit", func(t *testing.T) {
		ctx := context.Background()
		f := newEngineFixture()
		f.source.On("GetBalances", ctx, "offering-1", testPeriod).Return(weightsOf("1"), nil)
		f.factory.On("Create").Return(f.uow)
		f.uow.On("Begin", ctx).Return(nil)
		f.uow.On("Commit").Return(errors.New("serialization failure"))
		f.uow.On("Rollback").Return(nil)
		f.expectRunCreated("run-1")
		f.expectPayoutsCreated()
		f.recorder.On("RecordDistribution", OutcomeFailed, 0, mock.Anything, mock.Anything).Return()

		result, err := f.engine.Distribute(ctx, "offering-1", testPeriod, dec("100"))

		assert.Nil(t, result)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to commit transaction")
		f.recorder.AssertExpectations(t)
	})
}

func TestDistributionEngine_Distribute_RepeatedCallsCreateSeparateRuns(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()

	f.source.On("GetBalances", ctx, "offering-1", testPeriod).Return(weightsOf("1", "3"), nil)
	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Commit").Return(nil)
	f.uow.On("Rollback").Return(nil)
	f.expectRunCreated("run-1")
	f.expectRunCreated("run-2")
	f.expectPayoutsCreated()
	f.recorder.On("RecordDistribution", OutcomeSuccess, 2, mock.Anything, mock.Anything).Return()

	first, err := f.engine.Distribute(ctx, "offering-1", testPeriod, dec("40"))
	require.NoError(t, err)
	second, err := f.engine.Distribute(ctx, "offering-1", testPeriod, dec("40"))
	require.NoError(t, err)

	assert.NotEqual(t, first.Run.ID, second.Run.ID)
	assert.Equal(t, "10.00", first.Payouts[0].Amount.StringFixed(CentPlaces))
	assert.Equal(t, "30.00", second.Payouts[1].Amount.StringFixed(CentPlaces))
	f.repo.AssertNumberOfCalls(t, "CreateDistributionRun", 2)
}

func TestDistributionEngine_DistributeInUnit_LeavesTransactionToCaller(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()

	f.source.On("GetBalances", ctx, "offering-1", testPeriod).Return(weightsOf("2", "1", "1"), nil)
	f.expectRunCreated("run-1")
	f.expectPayoutsCreated()

	result, err := f.engine.DistributeInUnit(ctx, f.uow, "offering-1", testPeriod, decimal.NewFromInt(1))

	require.NoError(t, err)
	assert.Equal(t, "0.50", result.Payouts[0].Amount.StringFixed(CentPlaces))
	assert.Equal(t, "0.25", result.Payouts[1].Amount.StringFixed(CentPlaces))
	assert.Equal(t, "0.25", result.Payouts[2].Amount.StringFixed(CentPlaces))
	f.factory.AssertNotCalled(t, "Create")
	f.uow.AssertNotCalled(t, "Begin", mock.Anything)
	f.uow.AssertNotCalled(t, "Commit")
	f.uow.AssertNotCalled(t, "Rollback")
	f.recorder.AssertNotCalled(t, "RecordDistribution", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDistributionEngine_DistributeInUnit_RecordsFailuresImmediately(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()

	f.source.On("GetBalances", ctx, "offering-1", testPeriod).Return(weightsOf("0"), nil)
	f.recorder.On("RecordDistribution", OutcomeRejected, 0, mock.Anything, mock.Anything).Return().Once()

	_, err := f.engine.DistributeInUnit(ctx, f.uow, "offering-1", testPeriod, dec("10"))

	assert.ErrorIs(t, err, ErrZeroTotalBalance)
	f.recorder.AssertExpectations(t)
}

func TestDistributionEngine_RecordUnitOutcome(t *testing.T) {
	f := newEngineFixture()
	result := &models.DistributionResult{
		Run:     &models.DistributionRun{ID: "run-1", TotalAmount: dec("100.00")},
		Payouts: []*models.Payout{{Amount: dec("60.00")}, {Amount: dec("40.00")}},
	}

	f.recorder.On("RecordDistribution", OutcomeSuccess, 2, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(dec("100"))
	}), mock.Anything).Return().Once()
	f.recorder.On("RecordDistribution", OutcomeFailed, 0, mock.Anything, mock.Anything).Return().Once()

	f.engine.RecordUnitOutcome(result, nil, time.Now())
	f.engine.RecordUnitOutcome(nil, errors.New("commit failed"), time.Now())

	f.recorder.AssertExpectations(t)
}
