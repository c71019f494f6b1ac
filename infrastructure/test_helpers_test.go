package infrastructure

import (
	"context"
	"sync"
	"time"

	"revshare/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
)

// delayedPublisher wraps a MessagePublisher and sleeps before publishing on one subject
type delayedPublisher struct {
	next    MessagePublisher
	subject string
	delay   time.Duration
}

func (p *delayedPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if subject == p.subject {
		time.Sleep(p.delay)
	}
	return p.next.Publish(ctx, subject, data)
}

type publishedMessage struct {
	subject string
	data    []byte
}

// fakeMessageBus records publishes and captures subscribed handlers
type fakeMessageBus struct {
	mu         sync.Mutex
	published  []publishedMessage
	handlers   map[string]func([]byte) error
	publishErr error
}

func newFakeMessageBus() *fakeMessageBus {
	return &fakeMessageBus{handlers: make(map[string]func([]byte) error)}
}

func (b *fakeMessageBus) Publish(ctx context.Context, subject string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published = append(b.published, publishedMessage{subject: subject, data: data})
	return nil
}

func (b *fakeMessageBus) Subscribe(subject string, handler func([]byte) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[subject] = handler
	return nil
}

func (b *fakeMessageBus) messages() []publishedMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]publishedMessage(nil), b.published...)
}

// fakeKafkaWriter records written messages
type fakeKafkaWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	writeErr error
	closed   bool

	// beforeWrite runs ahead of each write, outside the lock
	beforeWrite func(msgs []kafka.Message)
}

func (w *fakeKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.beforeWrite != nil {
		w.beforeWrite(msgs)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writeErr != nil {
		return w.writeErr
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeKafkaWriter) eventTypes() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	types := make([]string, 0, len(w.messages))
	for _, msg := range w.messages {
		for _, h := range msg.Headers {
			if h.Key == "eventType" {
				types = append(types, string(h.Value))
			}
		}
	}
	return types
}

func (w *fakeKafkaWriter) Close() error {
	w.closed = true
	return nil
}

// mockEventMetrics is a mock implementation of EventMetrics
type mockEventMetrics struct {
	mock.Mock
}

func (m *mockEventMetrics) RecordEventPublished(sink, eventType string, err error) {
	m.Called(sink, eventType, err)
}

func (m *mockEventMetrics) RecordEventReceived(eventType string) {
	m.Called(eventType)
}

// mockRevenueReportService is a mock implementation of service.RevenueReportService
type mockRevenueReportService struct {
	mock.Mock
}

func (m *mockRevenueReportService) Submit(ctx context.Context, req models.RevenueReportRequest) (*models.DistributionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DistributionResult), args.Error(1)
}
