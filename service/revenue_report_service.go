package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"revshare/events"
	"revshare/models"

	log "github.com/sirupsen/logrus"
)

type revenueReportService struct {
	uowFactory UnitOfWorkFactory
	engine     DistributionEngine
}

// NewRevenueReportService creates a new revenue report service
func NewRevenueReportService(uowFactory UnitOfWorkFactory, engine DistributionEngine) RevenueReportService {
	return &revenueReportService{
		uowFactory: uowFactory,
		engine:     engine,
	}
}

func (s *revenueReportService) Submit(ctx context.Context, req models.RevenueReportRequest) (_ *models.DistributionResult, err error) {
	// Validate inputs
	if strings.TrimSpace(req.OfferingID) == "" {
		return nil, ErrInvalidOffering
	}
	if !req.Period.IsValid() {
		return nil, ErrInvalidPeriod
	}
	amount := RoundToCents(req.Amount)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidAmount, req.Amount.String())
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	// The report row is inserted first so a concurrent submission for the same
	// period blocks on the unique index and then fails as a duplicate.
	report := &models.RevenueReport{
		OfferingID:  req.OfferingID,
		PeriodStart: req.Period.Start,
		PeriodEnd:   req.Period.End,
		Amount:      amount,
		ReportedBy:  req.ReportedBy,
	}
	if err := uow.RevenueReportRepository().Create(ctx, report); err != nil {
		return nil, err
	}

	started := time.Now()
	result, err := s.engine.DistributeInUnit(ctx, uow, req.OfferingID, req.Period, amount)
	if err != nil {
		return nil, err
	}
	// The distribution only counts once the report transaction commits
	defer func() {
		if err != nil {
			s.engine.RecordUnitOutcome(nil, err, started)
		} else {
			s.engine.RecordUnitOutcome(result, nil, started)
		}
	}()

	if err := uow.RevenueReportRepository().AttachDistributionRun(ctx, report.ID, result.Run.ID); err != nil {
		return nil, fmt.Errorf("failed to link revenue report to distribution run: %w", err)
	}

	bus := uow.EventBus()
	bus.Publish(events.DistributionCompletedEvent{
		DistributionRunID: result.Run.ID,
		OfferingID:        result.Run.OfferingID,
		TotalAmount:       result.Run.TotalAmount,
		PayoutCount:       len(result.Payouts),
		DistributionDate:  result.Run.DistributionDate,
		ReportedBy:        req.ReportedBy,
	})
	for _, p := range result.Payouts {
		bus.Publish(events.PayoutCompletedEvent{
			PayoutID:          p.ID,
			DistributionRunID: p.DistributionRunID,
			OfferingID:        result.Run.OfferingID,
			InvestorID:        p.InvestorID,
			Amount:            p.Amount,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"offeringId":        req.OfferingID,
		"revenueReportId":   report.ID,
		"distributionRunId": result.Run.ID,
		"reportedBy":        req.ReportedBy,
	}).Info("Revenue report distributed")

	return result, nil
}
