package repository

import (
	"context"
	"errors"
	"fmt"

	"revshare/database"
	"revshare/events"
	"revshare/service"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                *database.DB
	tx                pgx.Tx
	ctx               context.Context
	transactionalBus  *events.TransactionalBus
	distributionRepo  service.DistributionRepository
	revenueReportRepo service.RevenueReportRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.distributionRepo = newDistributionRepositoryWithTx(tx)
	u.revenueReportRepo = newRevenueReportRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and then releases queued events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		u.tx = nil
		u.transactionalBus.Discard()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	if err := u.transactionalBus.Flush(u.ctx); err != nil {
		// The data is committed; a failed flush only loses notifications
		log.WithError(err).Error("Failed to flush events after commit")
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	u.transactionalBus.Discard()

	return nil
}

// DistributionRepository returns the distribution repository for this unit of work
func (u *unitOfWork) DistributionRepository() service.DistributionRepository {
	if u.distributionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.distributionRepo
}

// RevenueReportRepository returns the revenue report repository for this unit of work
func (u *unitOfWork) RevenueReportRepository() service.RevenueReportRepository {
	if u.revenueReportRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.revenueReportRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	return u.transactionalBus
}
