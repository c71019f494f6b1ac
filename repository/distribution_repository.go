package repository

import (
	"context"
	"fmt"

	"revshare/database"
	"revshare/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DistributionRepository implements the DistributionRepository interface
type DistributionRepository struct {
	q queryable
}

// NewDistributionRepository creates a new distribution repository
func NewDistributionRepository(db *database.DB) *DistributionRepository {
	return &DistributionRepository{q: db.Pool}
}

// newDistributionRepositoryWithTx creates a new distribution repository with a transaction
func newDistributionRepositoryWithTx(tx queryable) *DistributionRepository {
	return &DistributionRepository{q: tx}
}

// CreateDistributionRun inserts a run and fills its ID and timestamps
func (r *DistributionRepository) CreateDistributionRun(ctx context.Context, run *models.DistributionRun) error {
	if run.Status == "" {
		run.Status = models.DistributionStatusPending
	}
	if !run.Status.IsValid() {
		return fmt.Errorf("invalid distribution status %q", run.Status)
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	query := `
		INSERT INTO distribution_runs (id, offering_id, total_amount, distribution_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		run.ID,
		run.OfferingID,
		run.TotalAmount,
		run.DistributionDate,
		run.Status,
	).Scan(&run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create distribution run for offering %s: %w", run.OfferingID, err)
	}

	return nil
}

// CreatePayout inserts a payout and fills its ID and timestamps
func (r *DistributionRepository) CreatePayout(ctx context.Context, payout *models.Payout) error {
	if payout.Status == "" {
		payout.Status = models.DistributionStatusPending
	}
	if !payout.Status.IsValid() {
		return fmt.Errorf("invalid distribution status %q", payout.Status)
	}
	if payout.ID == "" {
		payout.ID = uuid.NewString()
	}

	query := `
		INSERT INTO payouts (id, distribution_run_id, investor_id, amount, status, transaction_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		payout.ID,
		payout.DistributionRunID,
		payout.InvestorID,
		payout.Amount,
		payout.Status,
		payout.TransactionHash,
	).Scan(&payout.CreatedAt, &payout.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payout for investor %s: %w", payout.InvestorID, err)
	}

	return nil
}

// GetByID retrieves a distribution run, returning nil when it does not exist
func (r *DistributionRepository) GetByID(ctx context.Context, id string) (*models.DistributionRun, error) {
	if uuid.Validate(id) != nil {
		return nil, nil
	}

	query := `
		SELECT id, offering_id, total_amount, distribution_date, status, created_at, updated_at
		FROM distribution_runs
		WHERE id = $1
	`

	run, err := scanDistributionRun(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get distribution run %s: %w", id, err)
	}

	return run, nil
}

// ListByOffering returns all runs for an offering, newest first
func (r *DistributionRepository) ListByOffering(ctx context.Context, offeringID string) ([]*models.DistributionRun, error) {
	query := `
		SELECT id, offering_id, total_amount, distribution_date, status, created_at, updated_at
		FROM distribution_runs
		WHERE offering_id = $1
		ORDER BY seq DESC
	`

	rows, err := r.q.Query(ctx, query, offeringID)
	if err != nil {
		return nil, fmt.Errorf("failed to list distribution runs for offering %s: %w", offeringID, err)
	}
	defer rows.Close()

	var runs []*models.DistributionRun
	for rows.Next() {
		run, err := scanDistributionRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan distribution run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating distribution runs: %w", err)
	}

	return runs, nil
}

// ListPayoutsByRun returns the payouts of a run in creation order
func (r *DistributionRepository) ListPayoutsByRun(ctx context.Context, runID string) ([]*models.Payout, error) {
	if uuid.Validate(runID) != nil {
		return nil, nil
	}

	query := `
		SELECT id, distribution_run_id, investor_id, amount, status, transaction_hash, created_at, updated_at
		FROM payouts
		WHERE distribution_run_id = $1
		ORDER BY seq ASC
	`

	return r.queryPayouts(ctx, query, runID)
}

// ListPayoutsByInvestor returns all payouts for an investor, newest first
func (r *DistributionRepository) ListPayoutsByInvestor(ctx context.Context, investorID string) ([]*models.Payout, error) {
	query := `
		SELECT id, distribution_run_id, investor_id, amount, status, transaction_hash, created_at, updated_at
		FROM payouts
		WHERE investor_id = $1
		ORDER BY seq DESC
	`

	return r.queryPayouts(ctx, query, investorID)
}

func (r *DistributionRepository) queryPayouts(ctx context.Context, query string, arg string) ([]*models.Payout, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query payouts: %w", err)
	}
	defer rows.Close()

	var payouts []*models.Payout
	for rows.Next() {
		var p models.Payout
		err := rows.Scan(
			&p.ID,
			&p.DistributionRunID,
			&p.InvestorID,
			&p.Amount,
			&p.Status,
			&p.TransactionHash,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payout: %w", err)
		}
		payouts = append(payouts, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payouts: %w", err)
	}

	return payouts, nil
}

func scanDistributionRun(row pgx.Row) (*models.DistributionRun, error) {
	var run models.DistributionRun
	err := row.Scan(
		&run.ID,
		&run.OfferingID,
		&run.TotalAmount,
		&run.DistributionDate,
		&run.Status,
		&run.CreatedAt,
		&run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
