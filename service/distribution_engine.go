package service

import (
	"context"
	"fmt"
	"time"

	"revshare/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Distribution outcomes reported to the recorder
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// DistributionRecorder receives one observation per distribute call
type DistributionRecorder interface {
	RecordDistribution(outcome string, payoutCount int, amount decimal.Decimal, duration time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) RecordDistribution(string, int, decimal.Decimal, time.Duration) {}

type distributionEngine struct {
	uowFactory    UnitOfWorkFactory
	balanceSource BalanceSource
	recorder      DistributionRecorder
}

// NewDistributionEngine creates a new distribution engine.
// The balance source is fixed for the lifetime of the engine; recorder may be nil.
func NewDistributionEngine(uowFactory UnitOfWorkFactory, balanceSource BalanceSource, recorder DistributionRecorder) DistributionEngine {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &distributionEngine{
		uowFactory:    uowFactory,
		balanceSource: balanceSource,
		recorder:      recorder,
	}
}

func (e *distributionEngine) Distribute(ctx context.Context, offeringID string, period models.Period, revenue decimal.Decimal) (result *models.DistributionResult, err error) {
	start := time.Now()
	defer func() { e.record(result, err, start) }()

	amount, allocations, err := e.allocate(ctx, offeringID, period, revenue)
	if err != nil {
		return nil, err
	}

	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	result, err = e.persist(ctx, uow, offeringID, period, amount, allocations)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"offeringId":        offeringID,
		"distributionRunId": result.Run.ID,
		"totalAmount":       result.Run.TotalAmount.StringFixed(CentPlaces),
		"payoutCount":       len(result.Payouts),
	}).Info("Distribution run persisted")

	return result, nil
}

func (e *distributionEngine) DistributeInUnit(ctx context.Context, uow UnitOfWork, offeringID string, period models.Period, revenue decimal.Decimal) (result *models.DistributionResult, err error) {
	// Success is reported by the caller through RecordUnitOutcome once its unit commits
	start := time.Now()
	defer func() {
		if err != nil {
			e.record(nil, err, start)
		}
	}()

	amount, allocations, err := e.allocate(ctx, offeringID, period, revenue)
	if err != nil {
		return nil, err
	}
	return e.persist(ctx, uow, offeringID, period, amount, allocations)
}

func (e *distributionEngine) RecordUnitOutcome(result *models.DistributionResult, err error, started time.Time) {
	e.record(result, err, started)
}

// allocate validates the request, acquires weights and computes the reconciled split.
// Nothing is written.
func (e *distributionEngine) allocate(ctx context.Context, offeringID string, period models.Period, revenue decimal.Decimal) (decimal.Decimal, []Allocation, error) {
	amount := RoundToCents(revenue)
	if !amount.IsPositive() {
		return decimal.Zero, nil, fmt.Errorf("%w: got %s", ErrInvalidAmount, revenue.String())
	}
	if e.balanceSource == nil {
		return decimal.Zero, nil, ErrNoBalanceSource
	}

	weights, err := e.balanceSource.GetBalances(ctx, offeringID, period)
	if err != nil {
		return decimal.Zero, nil, err
	}

	log.WithFields(log.Fields{
		"offeringId":  offeringID,
		"periodStart": period.Start,
		"periodEnd":   period.End,
		"weightCount": len(weights),
	}).Debug("Acquired balance weights")

	allocations, err := Allocate(weights, amount)
	if err != nil {
		return decimal.Zero, nil, err
	}
	return amount, allocations, nil
}

// persist writes the run and then one payout per allocation, in allocation order
func (e *distributionEngine) persist(ctx context.Context, uow UnitOfWork, offeringID string, period models.Period, amount decimal.Decimal, allocations []Allocation) (*models.DistributionResult, error) {
	repo := uow.DistributionRepository()

	run := &models.DistributionRun{
		OfferingID:       offeringID,
		TotalAmount:      amount,
		DistributionDate: period.End,
		Status:           models.DistributionStatusPending,
	}
	if err := repo.CreateDistributionRun(ctx, run); err != nil {
		return nil, err
	}

	payouts := make([]*models.Payout, 0, len(allocations))
	for _, a := range allocations {
		payout := &models.Payout{
			DistributionRunID: run.ID,
			InvestorID:        a.InvestorID,
			Amount:            a.Amount,
			Status:            models.DistributionStatusPending,
		}
		if err := repo.CreatePayout(ctx, payout); err != nil {
			return nil, err
		}
		payouts = append(payouts, payout)
	}

	return &models.DistributionResult{Run: run, Payouts: payouts}, nil
}

func (e *distributionEngine) record(result *models.DistributionResult, err error, start time.Time) {
	duration := time.Since(start)
	switch {
	case err == nil:
		e.recorder.RecordDistribution(OutcomeSuccess, len(result.Payouts), result.Run.TotalAmount, duration)
	case IsValidationError(err):
		e.recorder.RecordDistribution(OutcomeRejected, 0, decimal.Zero, duration)
	default:
		e.recorder.RecordDistribution(OutcomeFailed, 0, decimal.Zero, duration)
	}
}
