package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"revshare/events"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// kafkaWriter is the subset of *kafka.Writer the publisher needs
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEventPublisher forwards committed domain events to a Kafka topic, keyed by offering
type KafkaEventPublisher struct {
	writer  kafkaWriter
	topic   string
	metrics EventMetrics
}

// NewKafkaEventPublisher creates a publisher writing to topic on the given brokers
func NewKafkaEventPublisher(brokers []string, topic string, metrics EventMetrics) *KafkaEventPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newKafkaEventPublisherWithWriter(writer, topic, metrics)
}

func newKafkaEventPublisherWithWriter(writer kafkaWriter, topic string, metrics EventMetrics) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		writer:  writer,
		topic:   topic,
		metrics: metricsOrNoop(metrics),
	}
}

// Register subscribes the publisher to every event type it forwards, in emit order
func (p *KafkaEventPublisher) Register(bus *events.Bus) {
	bus.SubscribeOrdered(p.Handle, events.EventTypeDistributionCompleted, events.EventTypePayoutCompleted)
}

// Handle is an events.Handler; failures are logged since the bus has no error path
func (p *KafkaEventPublisher) Handle(ctx context.Context, event events.Event) {
	err := p.Publish(ctx, event)
	p.metrics.RecordEventPublished(SinkKafka, string(event.Type()), err)
	if err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"topic":     p.topic,
			"error":     err,
		}).Error("Failed to publish event to Kafka")
	}
}

// Publish writes one enveloped event. Events of one offering share a partition.
func (p *KafkaEventPublisher) Publish(ctx context.Context, event events.Event) error {
	envelope, err := NewEventEnvelope(event)
	if err != nil {
		return err
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(offeringKey(event)),
		Value: value,
		Time:  envelope.Timestamp,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(envelope.EventType)},
			{Key: "eventId", Value: []byte(envelope.EventID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write event to kafka topic %s: %w", p.topic, err)
	}

	log.WithFields(log.Fields{
		"eventType": envelope.EventType,
		"eventId":   envelope.EventID,
		"topic":     p.topic,
	}).Debug("Successfully published event to Kafka")

	return nil
}

// Close flushes and closes the underlying writer
func (p *KafkaEventPublisher) Close() error {
	return p.writer.Close()
}
