package service

import (
	"fmt"
	"sort"

	"revshare/models"

	"github.com/shopspring/decimal"
)

// CentPlaces is the number of decimal places every monetary amount is kept at
const CentPlaces = 2

// rawSharePrecision is the number of fractional digits kept for unrounded shares
const rawSharePrecision = 32

var (
	oneCent   = decimal.New(1, -CentPlaces)
	zeroCents = decimal.New(0, -CentPlaces)
)

// Allocation is one investor's share of a revenue amount
type Allocation struct {
	InvestorID string
	Raw        decimal.Decimal // unrounded proportional share
	Amount     decimal.Decimal // final amount in cents after reconciliation
}

// RoundToCents rounds half away from zero to two decimal places
func RoundToCents(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(CentPlaces)
}

// ComputeShares returns balance_i / Σbalance × revenue for every weight, in input order.
// The multiplication happens before the division so exact halves survive to rounding.
func ComputeShares(weights []models.BalanceWeight, revenue decimal.Decimal) ([]decimal.Decimal, error) {
	if len(weights) == 0 {
		return nil, ErrNoInvestors
	}

	totalBalance := decimal.Zero
	for _, w := range weights {
		if w.Balance.IsNegative() {
			return nil, fmt.Errorf("%w: investor %s has balance %s", ErrNegativeBalance, w.InvestorID, w.Balance)
		}
		totalBalance = totalBalance.Add(w.Balance)
	}
	if totalBalance.IsZero() {
		return nil, ErrZeroTotalBalance
	}

	raw := make([]decimal.Decimal, len(weights))
	for i, w := range weights {
		raw[i] = w.Balance.Mul(revenue).DivRound(totalBalance, rawSharePrecision)
	}
	return raw, nil
}

// RoundShares rounds each raw share to cents independently
func RoundShares(raw []decimal.Decimal) []decimal.Decimal {
	rounded := make([]decimal.Decimal, len(raw))
	for i, r := range raw {
		rounded[i] = RoundToCents(r)
	}
	return rounded
}

// Reconcile assigns the residual left by independent rounding so the result sums to target.
//
// The whole residual goes to the share with the largest raw value, ties resolved by the
// earliest position. A negative residual that would push that share below zero leaves it
// at zero and carries the remaining deficit to the next-largest raw share.
// The input slices are not modified.
func Reconcile(target decimal.Decimal, raw, rounded []decimal.Decimal) []decimal.Decimal {
	adjusted := make([]decimal.Decimal, len(rounded))
	copy(adjusted, rounded)
	if len(adjusted) == 0 {
		return adjusted
	}

	roundedSum := decimal.Zero
	for _, r := range adjusted {
		roundedSum = roundedSum.Add(r)
	}

	diff := RoundToCents(target.Sub(roundedSum))
	if diff.Abs().LessThan(oneCent) {
		return adjusted
	}

	for _, i := range largestFirst(raw) {
		next := adjusted[i].Add(diff)
		if !next.IsNegative() {
			adjusted[i] = next
			return adjusted
		}
		adjusted[i] = zeroCents
		diff = next
	}
	return adjusted
}

// largestFirst returns indices ordered by descending raw share, stable on position
func largestFirst(raw []decimal.Decimal) []int {
	order := make([]int, len(raw))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return raw[order[a]].GreaterThan(raw[order[b]])
	})
	return order
}

// Allocate splits revenue across the weights and reconciles the rounding residual.
// revenue must already be in cents. The returned allocations follow the order of weights.
func Allocate(weights []models.BalanceWeight, revenue decimal.Decimal) ([]Allocation, error) {
	raw, err := ComputeShares(weights, revenue)
	if err != nil {
		return nil, err
	}

	amounts := Reconcile(revenue, raw, RoundShares(raw))

	allocations := make([]Allocation, len(weights))
	total := decimal.Zero
	for i, w := range weights {
		allocations[i] = Allocation{
			InvestorID: w.InvestorID,
			Raw:        raw[i],
			Amount:     amounts[i],
		}
		total = total.Add(amounts[i])
	}

	if !total.Equal(revenue) {
		return nil, fmt.Errorf("allocation sums to %s, expected %s", total.StringFixed(CentPlaces), revenue.StringFixed(CentPlaces))
	}
	return allocations, nil
}
