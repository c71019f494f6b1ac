package repository

import (
	"context"
	"testing"

	"revshare/models"
	"revshare/repository/testutil"
	"revshare/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevenueReportRepository_CreateAndAttach(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	reports := NewRevenueReportRepository(testDB.DB)
	runs := NewDistributionRepository(testDB.DB)
	period := testutil.TestPeriod()

	report := testutil.CreateTestRevenueReport("offering-1", "1500.00", period)
	require.NoError(t, reports.Create(ctx, report))
	require.NotEmpty(t, report.ID)

	run := testutil.CreateTestDistributionRun("offering-1", "1500.00")
	require.NoError(t, runs.CreateDistributionRun(ctx, run))
	require.NoError(t, reports.AttachDistributionRun(ctx, report.ID, run.ID))

	got, err := reports.GetByPeriod(ctx, "offering-1", period)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, report.ID, got.ID)
	assert.Equal(t, "1500.00", got.Amount.StringFixed(2))
	assert.Equal(t, "issuer-test", got.ReportedBy)
	require.NotNil(t, got.DistributionRunID)
	assert.Equal(t, run.ID, *got.DistributionRunID)
}

func TestRevenueReportRepository_DuplicatePeriod(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	reports := NewRevenueReportRepository(testDB.DB)
	period := testutil.TestPeriod()

	require.NoError(t, reports.Create(ctx, testutil.CreateTestRevenueReport("offering-1", "10.00", period)))

	err := reports.Create(ctx, testutil.CreateTestRevenueReport("offering-1", "99.00", period))
	assert.ErrorIs(t, err, service.ErrDuplicateReport)

	// Same period for another offering is fine
	require.NoError(t, reports.Create(ctx, testutil.CreateTestRevenueReport("offering-2", "10.00", period)))
}

func TestRevenueReportRepository_GetByPeriod_NotFound(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	reports := NewRevenueReportRepository(testDB.DB)

	got, err := reports.GetByPeriod(ctx, "offering-1", testutil.TestPeriod())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRevenueReportRepository_AttachUnknownReport(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	reports := NewRevenueReportRepository(testDB.DB)
	runs := NewDistributionRepository(testDB.DB)

	run := testutil.CreateTestDistributionRun("offering-1", "5.00")
	require.NoError(t, runs.CreateDistributionRun(ctx, run))

	err := reports.AttachDistributionRun(ctx, "00000000-0000-0000-0000-000000000000", run.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revenue report not found")
}

func TestRevenueReportRepository_PeriodMustBeOrdered(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	reports := NewRevenueReportRepository(testDB.DB)
	period := testutil.TestPeriod()

	inverted := models.Period{Start: period.End, End: period.Start}
	err := reports.Create(ctx, testutil.CreateTestRevenueReport("offering-1", "10.00", inverted))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrDuplicateReport)
}
