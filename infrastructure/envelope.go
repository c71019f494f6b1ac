package infrastructure

import (
	"encoding/json"
	"fmt"
	"time"

	"revshare/events"

	"github.com/google/uuid"
)

// SourceService identifies this service in event envelopes
const SourceService = "revshare"

// EventEnvelope wraps every event written to an external sink
type EventEnvelope struct {
	EventID       string          `json:"eventId"`
	EventType     string          `json:"eventType"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"sourceService"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEventEnvelope serializes the event into a fresh envelope
func NewEventEnvelope(event events.Event) (*EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: SourceService,
		Payload:       payload,
	}, nil
}

// offeringKey returns the offering an event belongs to, used for partitioning
func offeringKey(event events.Event) string {
	switch e := event.(type) {
	case events.DistributionCompletedEvent:
		return e.OfferingID
	case events.PayoutCompletedEvent:
		return e.OfferingID
	default:
		return ""
	}
}

// Sink names reported to EventMetrics
const (
	SinkNATS    = "nats"
	SinkKafka   = "kafka"
	SinkDiscord = "discord"
)

// EventMetrics records sink traffic
type EventMetrics interface {
	RecordEventPublished(sink, eventType string, err error)
	RecordEventReceived(eventType string)
}

type noopEventMetrics struct{}

func (noopEventMetrics) RecordEventPublished(string, string, error) {}
func (noopEventMetrics) RecordEventReceived(string)                 {}

func metricsOrNoop(m EventMetrics) EventMetrics {
	if m == nil {
		return noopEventMetrics{}
	}
	return m
}
