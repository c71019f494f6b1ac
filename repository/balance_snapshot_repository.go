package repository

import (
	"context"
	"fmt"
	"time"

	"revshare/database"
	"revshare/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BalanceSnapshotRepository stores captured balances and serves them as a balance source
type BalanceSnapshotRepository struct {
	db *database.DB
	q  queryable
}

// NewBalanceSnapshotRepository creates a new balance snapshot repository
func NewBalanceSnapshotRepository(db *database.DB) *BalanceSnapshotRepository {
	return &BalanceSnapshotRepository{db: db, q: db.Pool}
}

// Record inserts snapshot rows in one transaction, so a batch is stored whole or not at all.
// Capture order is preserved through captured_at and id.
func (r *BalanceSnapshotRepository) Record(ctx context.Context, snapshots ...*models.BalanceSnapshot) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		return recordSnapshots(ctx, tx, snapshots)
	})
}

func recordSnapshots(ctx context.Context, q queryable, snapshots []*models.BalanceSnapshot) error {
	query := `
		INSERT INTO balance_snapshots (id, offering_id, investor_id, balance, period_start, period_end, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, s := range snapshots {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		if s.CapturedAt.IsZero() {
			s.CapturedAt = time.Now().UTC()
		}

		_, err := q.Exec(ctx, query,
			s.ID,
			s.OfferingID,
			s.InvestorID,
			s.Balance,
			s.PeriodStart,
			s.PeriodEnd,
			s.CapturedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to record balance snapshot for investor %s: %w", s.InvestorID, err)
		}
	}

	return nil
}

// GetBalances returns the snapshot captured for exactly this offering and period
func (r *BalanceSnapshotRepository) GetBalances(ctx context.Context, offeringID string, period models.Period) ([]models.BalanceWeight, error) {
	query := `
		SELECT investor_id, balance
		FROM balance_snapshots
		WHERE offering_id = $1 AND period_start = $2 AND period_end = $3
		ORDER BY captured_at ASC, id ASC
	`

	rows, err := r.q.Query(ctx, query, offeringID, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query balance snapshots for offering %s: %w", offeringID, err)
	}
	defer rows.Close()

	weights := []models.BalanceWeight{}
	for rows.Next() {
		var w models.BalanceWeight
		if err := rows.Scan(&w.InvestorID, &w.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan balance snapshot: %w", err)
		}
		weights = append(weights, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance snapshots: %w", err)
	}

	return weights, nil
}
