package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"

	"revshare/events"

	log "github.com/sirupsen/logrus"
)

// NATSEventPublisher forwards committed domain events to JetStream
type NATSEventPublisher struct {
	publisher     MessagePublisher
	subjectMapper *EventSubjectMapper
	metrics       EventMetrics
}

// NewNATSEventPublisher creates a new NATS event publisher; metrics may be nil
func NewNATSEventPublisher(publisher MessagePublisher, subjectMapper *EventSubjectMapper, metrics EventMetrics) *NATSEventPublisher {
	return &NATSEventPublisher{
		publisher:     publisher,
		subjectMapper: subjectMapper,
		metrics:       metricsOrNoop(metrics),
	}
}

// Register subscribes the publisher to every event type it forwards, in emit order
func (p *NATSEventPublisher) Register(bus *events.Bus) {
	bus.SubscribeOrdered(p.Handle, events.EventTypeDistributionCompleted, events.EventTypePayoutCompleted)
}

// Handle is an events.Handler; failures are logged since the bus has no error path
func (p *NATSEventPublisher) Handle(ctx context.Context, event events.Event) {
	err := p.Publish(ctx, event)
	p.metrics.RecordEventPublished(SinkNATS, string(event.Type()), err)
	if err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to publish event to NATS")
	}
}

// Publish wraps the event in an envelope and publishes it on the mapped subject
func (p *NATSEventPublisher) Publish(ctx context.Context, event events.Event) error {
	envelope, err := NewEventEnvelope(event)
	if err != nil {
		return err
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := p.subjectMapper.MapEventToSubject(event)
	if err := p.publisher.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")

	return nil
}

// EnsureEventStream makes sure the stream holding outbound events exists
func (p *NATSEventPublisher) EnsureEventStream(client *NATSClient) error {
	return client.EnsureStream(EventStreamName, p.subjectMapper.GetAllSubjects(), "Revenue distribution events")
}
