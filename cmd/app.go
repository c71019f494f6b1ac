package cmd

import (
	"context"
	"fmt"

	"revshare/config"
	"revshare/database"
	"revshare/events"
	"revshare/observability"
	"revshare/repository"
	"revshare/service"

	log "github.com/sirupsen/logrus"
)

// app holds the services shared by worker mode and the CLI subcommands
type app struct {
	cfg      *config.Config
	db       *database.DB
	eventBus *events.Bus
	metrics  *observability.MetricsProvider
	engine   service.DistributionEngine
	reports  service.RevenueReportService
	history  service.DistributionHistoryService
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	balanceSource, err := repository.NewBalanceSource(cfg.BalanceSource, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure balance source: %w", err)
	}
	log.WithField("balanceSource", cfg.BalanceSource).Info("Balance source configured")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	engine := service.NewDistributionEngine(uowFactory, balanceSource, metrics)

	return &app{
		cfg:      cfg,
		db:       db,
		eventBus: eventBus,
		metrics:  metrics,
		engine:   engine,
		reports:  service.NewRevenueReportService(uowFactory, engine),
		history:  service.NewDistributionHistoryService(uowFactory),
	}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.metrics.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Error shutting down metrics provider")
	}
	a.db.Close()
}
