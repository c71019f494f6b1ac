package repository

import (
	"context"
	"testing"
	"time"

	"revshare/database"
	"revshare/models"
	"revshare/repository/testutil"
	"revshare/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weightStrings(weights []models.BalanceWeight) [][2]string {
	out := make([][2]string, len(weights))
	for i, w := range weights {
		out[i] = [2]string{w.InvestorID, w.Balance.String()}
	}
	return out
}

func TestBalanceSnapshotRepository_GetBalances(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewBalanceSnapshotRepository(testDB.DB)
	period := testutil.TestPeriod()
	captured := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

	first := testutil.CreateTestSnapshot("offering-1", "investor-z", "70", period)
	first.CapturedAt = captured
	second := testutil.CreateTestSnapshot("offering-1", "investor-a", "30.5", period)
	second.CapturedAt = captured.Add(time.Second)
	otherPeriod := testutil.CreateTestSnapshot("offering-1", "investor-a", "999", models.Period{
		Start: period.End,
		End:   period.End.AddDate(0, 3, 0),
	})
	otherOffering := testutil.CreateTestSnapshot("offering-2", "investor-a", "5", period)

	require.NoError(t, repo.Record(ctx, first, second, otherPeriod, otherOffering))

	weights, err := repo.GetBalances(ctx, "offering-1", period)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{
		{"investor-z", "70"},
		{"investor-a", "30.5"},
	}, weightStrings(weights))
}

func TestBalanceSnapshotRepository_NoSnapshot(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBalanceSnapshotRepository(testDB.DB)

	weights, err := repo.GetBalances(context.Background(), "offering-1", testutil.TestPeriod())
	require.NoError(t, err)
	assert.NotNil(t, weights)
	assert.Empty(t, weights)
}

func TestBalanceSnapshotRepository_RejectsNegativeBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBalanceSnapshotRepository(testDB.DB)

	err := repo.Record(context.Background(), testutil.CreateTestSnapshot("offering-1", "investor-a", "-1", testutil.TestPeriod()))
	assert.Error(t, err)
}

func TestBalanceSnapshotRepository_RecordIsAllOrNothing(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewBalanceSnapshotRepository(testDB.DB)
	period := testutil.TestPeriod()

	err := repo.Record(ctx,
		testutil.CreateTestSnapshot("offering-1", "investor-a", "10", period),
		testutil.CreateTestSnapshot("offering-1", "investor-b", "20", period),
		testutil.CreateTestSnapshot("offering-1", "investor-c", "-5", period),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "investor-c")

	weights, err := repo.GetBalances(ctx, "offering-1", period)
	require.NoError(t, err)
	assert.Empty(t, weights, "rows written before the failing snapshot must be rolled back")

	// Duplicate investor inside one batch violates the period uniqueness and aborts the batch too
	err = repo.Record(ctx,
		testutil.CreateTestSnapshot("offering-1", "investor-a", "10", period),
		testutil.CreateTestSnapshot("offering-1", "investor-a", "11", period),
	)
	require.Error(t, err)

	weights, err = repo.GetBalances(ctx, "offering-1", period)
	require.NoError(t, err)
	assert.Empty(t, weights)
}

func TestInvestmentBalanceSource_GetBalances(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	source := NewInvestmentBalanceSource(testDB.DB)
	period := testutil.TestPeriod()

	investments := []*models.Investment{
		testutil.CreateTestInvestment("offering-1", "investor-b", "100", period.Start.AddDate(0, -2, 0)),
		testutil.CreateTestInvestment("offering-1", "investor-a", "50", period.Start.AddDate(0, 1, 0)),
		testutil.CreateTestInvestment("offering-1", "investor-b", "25.25", period.Start.AddDate(0, 2, 0)),
		// Bought after the period ended
		testutil.CreateTestInvestment("offering-1", "investor-a", "1000", period.End.Add(time.Hour)),
		testutil.CreateTestInvestment("offering-1", "investor-c", "10", period.End),
		// Fully sold out before the period ended
		testutil.CreateTestInvestment("offering-1", "investor-d", "40", period.Start),
		testutil.CreateTestInvestment("offering-1", "investor-d", "-40", period.Start.AddDate(0, 1, 0)),
		testutil.CreateTestInvestment("offering-2", "investor-a", "7", period.Start),
	}
	for _, inv := range investments {
		require.NoError(t, source.Create(ctx, inv))
	}

	weights, err := source.GetBalances(ctx, "offering-1", period)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{
		{"investor-b", "125.25"},
		{"investor-a", "50"},
	}, weightStrings(weights))
}

// nilDB is enough for constructors that only keep the pool reference
func nilDB() *database.DB {
	return &database.DB{}
}

func TestNewBalanceSource(t *testing.T) {
	snapshot, err := NewBalanceSource(BalanceSourceSnapshot, nilDB())
	require.NoError(t, err)
	assert.IsType(t, &BalanceSnapshotRepository{}, snapshot)

	investments, err := NewBalanceSource(BalanceSourceInvestments, nilDB())
	require.NoError(t, err)
	assert.IsType(t, &InvestmentBalanceSource{}, investments)

	_, err = NewBalanceSource("ledger", nilDB())
	assert.ErrorIs(t, err, service.ErrNoBalanceSource)
}
