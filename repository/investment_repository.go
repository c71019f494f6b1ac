package repository

import (
	"context"
	"fmt"

	"revshare/database"
	"revshare/models"

	"github.com/google/uuid"
)

// InvestmentBalanceSource derives weights from the live investment listing
type InvestmentBalanceSource struct {
	q queryable
}

// NewInvestmentBalanceSource creates a balance source over the investments table
func NewInvestmentBalanceSource(db *database.DB) *InvestmentBalanceSource {
	return &InvestmentBalanceSource{q: db.Pool}
}

// Create inserts an investment row
func (r *InvestmentBalanceSource) Create(ctx context.Context, investment *models.Investment) error {
	if investment.ID == "" {
		investment.ID = uuid.NewString()
	}

	query := `
		INSERT INTO investments (id, offering_id, investor_id, token_amount, invested_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.Exec(ctx, query,
		investment.ID,
		investment.OfferingID,
		investment.InvestorID,
		investment.TokenAmount,
		investment.InvestedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create investment for investor %s: %w", investment.InvestorID, err)
	}

	return nil
}

// GetBalances sums each investor's tokens bought before the period ends.
// Investors are ordered by their first investment; non-positive holdings are left out.
func (r *InvestmentBalanceSource) GetBalances(ctx context.Context, offeringID string, period models.Period) ([]models.BalanceWeight, error) {
	query := `
		SELECT investor_id, SUM(token_amount) AS balance
		FROM investments
		WHERE offering_id = $1 AND invested_at < $2
		GROUP BY investor_id
		HAVING SUM(token_amount) > 0
		ORDER BY MIN(invested_at) ASC, investor_id ASC
	`

	rows, err := r.q.Query(ctx, query, offeringID, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate investments for offering %s: %w", offeringID, err)
	}
	defer rows.Close()

	weights := []models.BalanceWeight{}
	for rows.Next() {
		var w models.BalanceWeight
		if err := rows.Scan(&w.InvestorID, &w.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan investment balance: %w", err)
		}
		weights = append(weights, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investment balances: %w", err)
	}

	return weights, nil
}
