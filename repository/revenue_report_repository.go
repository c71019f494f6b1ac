package repository

import (
	"context"
	"fmt"

	"revshare/database"
	"revshare/models"
	"revshare/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RevenueReportRepository implements the RevenueReportRepository interface
type RevenueReportRepository struct {
	q queryable
}

// NewRevenueReportRepository creates a new revenue report repository
func NewRevenueReportRepository(db *database.DB) *RevenueReportRepository {
	return &RevenueReportRepository{q: db.Pool}
}

// newRevenueReportRepositoryWithTx creates a new revenue report repository with a transaction
func newRevenueReportRepositoryWithTx(tx queryable) *RevenueReportRepository {
	return &RevenueReportRepository{q: tx}
}

// Create inserts a report. A second report for the same offering and period
// fails with service.ErrDuplicateReport.
func (r *RevenueReportRepository) Create(ctx context.Context, report *models.RevenueReport) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}

	query := `
		INSERT INTO revenue_reports (id, offering_id, period_start, period_end, amount, reported_by, distribution_run_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		report.ID,
		report.OfferingID,
		report.PeriodStart,
		report.PeriodEnd,
		report.Amount,
		report.ReportedBy,
		report.DistributionRunID,
	).Scan(&report.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: offering %s, period %s to %s", service.ErrDuplicateReport,
			report.OfferingID, report.PeriodStart.Format("2006-01-02"), report.PeriodEnd.Format("2006-01-02"))
	}
	if err != nil {
		return fmt.Errorf("failed to create revenue report for offering %s: %w", report.OfferingID, err)
	}

	return nil
}

// GetByPeriod retrieves the report for an offering and period, nil when absent
func (r *RevenueReportRepository) GetByPeriod(ctx context.Context, offeringID string, period models.Period) (*models.RevenueReport, error) {
	query := `
		SELECT id, offering_id, period_start, period_end, amount, reported_by, distribution_run_id, created_at
		FROM revenue_reports
		WHERE offering_id = $1 AND period_start = $2 AND period_end = $3
	`

	var report models.RevenueReport
	err := r.q.QueryRow(ctx, query, offeringID, period.Start, period.End).Scan(
		&report.ID,
		&report.OfferingID,
		&report.PeriodStart,
		&report.PeriodEnd,
		&report.Amount,
		&report.ReportedBy,
		&report.DistributionRunID,
		&report.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get revenue report for offering %s: %w", offeringID, err)
	}

	return &report, nil
}

// AttachDistributionRun links a report to the run created for it
func (r *RevenueReportRepository) AttachDistributionRun(ctx context.Context, reportID, runID string) error {
	query := `
		UPDATE revenue_reports
		SET distribution_run_id = $2
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query, reportID, runID)
	if err != nil {
		return fmt.Errorf("failed to attach distribution run %s to report %s: %w", runID, reportID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("revenue report not found: %s", reportID)
	}

	return nil
}
