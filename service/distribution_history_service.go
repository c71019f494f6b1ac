package service

import (
	"context"
	"fmt"

	"revshare/models"
)

type distributionHistoryService struct {
	uowFactory UnitOfWorkFactory
}

// NewDistributionHistoryService creates a new distribution history service
func NewDistributionHistoryService(uowFactory UnitOfWorkFactory) DistributionHistoryService {
	return &distributionHistoryService{
		uowFactory: uowFactory,
	}
}

func (s *distributionHistoryService) GetDistribution(ctx context.Context, runID string) (*models.DistributionResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	run, err := uow.DistributionRepository().GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get distribution run: %w", err)
	}
	if run == nil {
		return nil, fmt.Errorf("%w: %s", ErrDistributionNotFound, runID)
	}

	payouts, err := uow.DistributionRepository().ListPayoutsByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payouts: %w", err)
	}

	return &models.DistributionResult{Run: run, Payouts: payouts}, nil
}

func (s *distributionHistoryService) ListOfferingDistributions(ctx context.Context, offeringID string) ([]*models.DistributionRun, error) {
	if offeringID == "" {
		return nil, ErrInvalidOffering
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	runs, err := uow.DistributionRepository().ListByOffering(ctx, offeringID)
	if err != nil {
		return nil, fmt.Errorf("failed to list distribution runs: %w", err)
	}
	return runs, nil
}

func (s *distributionHistoryService) ListInvestorPayouts(ctx context.Context, investorID string) ([]*models.Payout, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	payouts, err := uow.DistributionRepository().ListPayoutsByInvestor(ctx, investorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list investor payouts: %w", err)
	}
	return payouts, nil
}
