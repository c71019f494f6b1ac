package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"revshare/config"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// MetricsProvider manages OpenTelemetry metrics for the distribution worker
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	// Metric instruments
	distributionsCounter   metric.Int64Counter
	distributionDuration   metric.Float64Histogram
	payoutsCounter         metric.Int64Counter
	distributedAmount      metric.Float64Counter
	eventsPublishedCounter metric.Int64Counter
	eventsReceivedCounter  metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider with the configured exporter
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	var exporter sdkmetric.Exporter
	var err error
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(dialCtx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(mp.config.ExportInterval()))
	if err := mp.start(reader); err != nil {
		return err
	}

	// Set as global meter provider
	otel.SetMeterProvider(mp.meterProvider)

	log.Info("Metrics provider initialized successfully")
	return nil
}

// InitializeWithReader sets up the provider against a caller-supplied reader
func (mp *MetricsProvider) InitializeWithReader(reader sdkmetric.Reader) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		return nil
	}
	return mp.start(reader)
}

func (mp *MetricsProvider) start(reader sdkmetric.Reader) error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	mp.meter = mp.meterProvider.Meter("revshare")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	return nil
}

func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.distributionsCounter, err = mp.meter.Int64Counter(
		DistributionsTotal,
		metric.WithDescription("Total number of distribute calls by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create distributions counter: %w", err)
	}

	mp.distributionDuration, err = mp.meter.Float64Histogram(
		DistributionDuration,
		metric.WithDescription("Duration of distribute calls in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create distribution duration histogram: %w", err)
	}

	mp.payoutsCounter, err = mp.meter.Int64Counter(
		PayoutsTotal,
		metric.WithDescription("Total number of payouts created"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create payouts counter: %w", err)
	}

	mp.distributedAmount, err = mp.meter.Float64Counter(
		DistributedAmountTotal,
		metric.WithDescription("Total revenue distributed"),
		metric.WithUnit("{currency}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create distributed amount counter: %w", err)
	}

	mp.eventsPublishedCounter, err = mp.meter.Int64Counter(
		EventsPublishedTotal,
		metric.WithDescription("Total number of events handed to external sinks"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create events published counter: %w", err)
	}

	mp.eventsReceivedCounter, err = mp.meter.Int64Counter(
		EventsReceivedTotal,
		metric.WithDescription("Total number of inbound messages received"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create events received counter: %w", err)
	}

	return nil
}

// Shutdown flushes and stops the meter provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordDistribution records one distribute call
func (mp *MetricsProvider) RecordDistribution(outcome string, payoutCount int, amount decimal.Decimal, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String(LabelOutcome, outcome))

	mp.distributionsCounter.Add(ctx, 1, attrs)
	mp.distributionDuration.Record(ctx, duration.Seconds(), attrs)
	if payoutCount > 0 {
		mp.payoutsCounter.Add(ctx, int64(payoutCount))
	}
	if amount.IsPositive() {
		mp.distributedAmount.Add(ctx, amount.InexactFloat64())
	}
}

// RecordEventPublished records an event handed to an external sink
func (mp *MetricsProvider) RecordEventPublished(sink, eventType string, err error) {
	if !mp.isEnabled() {
		return
	}

	result := ResultOK
	if err != nil {
		result = ResultError
	}

	mp.eventsPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelSink, sink),
			attribute.String(LabelEventType, eventType),
			attribute.String(LabelResult, result),
		),
	)
}

// RecordEventReceived records an inbound message
func (mp *MetricsProvider) RecordEventReceived(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.eventsReceivedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)),
	)
}

// isEnabled checks that instruments exist
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meterProvider != nil
}
