package infrastructure

import (
	"fmt"

	"revshare/events"
)

// Stream and subject names on the message bus
const (
	EventStreamName        = "revshare_events"
	RevenueStreamName      = "revshare_revenue"
	SubjectPrefix          = "revshare."
	RevenueReportedSubject = SubjectPrefix + "revenue.reported"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeDistributionCompleted:
		return SubjectPrefix + "distribution.completed"
	case events.EventTypePayoutCompleted:
		return SubjectPrefix + "payout.completed"
	default:
		return fmt.Sprintf("%sunknown.%s", SubjectPrefix, event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case SubjectPrefix + "distribution.completed":
		return events.EventTypeDistributionCompleted
	case SubjectPrefix + "payout.completed":
		return events.EventTypePayoutCompleted
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		SubjectPrefix + "distribution.completed",
		SubjectPrefix + "payout.completed",
	}
}
