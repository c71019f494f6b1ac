package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"revshare/models"
	"revshare/service"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// RevenueReportedMessage is the inbound payload announcing reported revenue
type RevenueReportedMessage struct {
	OfferingID  string          `json:"offeringId"`
	PeriodStart time.Time       `json:"periodStart"`
	PeriodEnd   time.Time       `json:"periodEnd"`
	Amount      decimal.Decimal `json:"amount"`
	ReportedBy  string          `json:"reportedBy"`
}

// RevenueReportConsumer turns revenue.reported messages into distributions
type RevenueReportConsumer struct {
	subscriber MessageSubscriber
	reports    service.RevenueReportService
	metrics    EventMetrics
	ctx        context.Context
}

// NewRevenueReportConsumer creates a consumer; metrics may be nil
func NewRevenueReportConsumer(subscriber MessageSubscriber, reports service.RevenueReportService, metrics EventMetrics) *RevenueReportConsumer {
	return &RevenueReportConsumer{
		subscriber: subscriber,
		reports:    reports,
		metrics:    metricsOrNoop(metrics),
		ctx:        context.Background(),
	}
}

// Start subscribes to the revenue subject. ctx bounds every Submit call made for a message.
func (c *RevenueReportConsumer) Start(ctx context.Context) error {
	c.ctx = ctx
	if err := c.subscriber.Subscribe(RevenueReportedSubject, func(data []byte) error {
		return c.HandleMessage(c.ctx, data)
	}); err != nil {
		return fmt.Errorf("failed to start revenue report consumer: %w", err)
	}
	return nil
}

// HandleMessage processes one message. A nil return acknowledges it; an error asks for
// redelivery, so only transient failures are returned.
func (c *RevenueReportConsumer) HandleMessage(ctx context.Context, data []byte) error {
	c.metrics.RecordEventReceived(RevenueReportedSubject)

	var msg RevenueReportedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		// Redelivering a malformed message cannot succeed
		log.WithFields(log.Fields{
			"error": err,
			"size":  len(data),
		}).Error("Discarding malformed revenue report message")
		return nil
	}

	logger := log.WithFields(log.Fields{
		"offeringId":  msg.OfferingID,
		"periodStart": msg.PeriodStart,
		"periodEnd":   msg.PeriodEnd,
		"amount":      msg.Amount.String(),
		"reportedBy":  msg.ReportedBy,
	})

	result, err := c.reports.Submit(ctx, models.RevenueReportRequest{
		OfferingID: msg.OfferingID,
		Period:     models.Period{Start: msg.PeriodStart, End: msg.PeriodEnd},
		Amount:     msg.Amount,
		ReportedBy: msg.ReportedBy,
	})
	if err != nil {
		if service.IsValidationError(err) {
			logger.WithError(err).Warn("Rejected revenue report")
			return nil
		}
		return fmt.Errorf("failed to distribute reported revenue for offering %s: %w", msg.OfferingID, err)
	}

	logger.WithFields(log.Fields{
		"distributionRunId": result.Run.ID,
		"payoutCount":       len(result.Payouts),
	}).Info("Distributed reported revenue")

	return nil
}

// EnsureRevenueStream makes sure the stream carrying inbound revenue reports exists
func EnsureRevenueStream(client *NATSClient) error {
	return client.EnsureStream(RevenueStreamName, []string{RevenueReportedSubject}, "Reported offering revenue")
}
