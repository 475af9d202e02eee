package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// BrokerPublisher writes events to a watermill publisher on one topic.
// Kafka backs it in production; tests use an in-process gochannel.
type BrokerPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

// PublisherConfig holds configuration for the Kafka publisher
type PublisherConfig struct {
	KafkaBrokers []string
	TopicName    string
	Logger       *slog.Logger
}

func NewBrokerPublisher(publisher message.Publisher, topic string, logger *slog.Logger) *BrokerPublisher {
	return &BrokerPublisher{publisher: publisher, topic: topic, logger: logger}
}

// NewKafkaEventPublisher partitions by entity id so events for one quiz or
// user stay ordered.
func NewKafkaEventPublisher(config PublisherConfig) (*BrokerPublisher, error) {
	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers: config.KafkaBrokers,
		Marshaler: kafka.NewWithPartitioningMarshaler(func(topic string, msg *message.Message) (string, error) {
			return msg.Metadata.Get(partitionKeyMetadata), nil
		}),
	}, watermill.NewSlogLogger(config.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}
	return NewBrokerPublisher(publisher, config.TopicName, config.Logger), nil
}

// Publish writes the JSON envelope with the event type, source, version and
// timestamp copied into message metadata.
func (p *BrokerPublisher) Publish(ctx context.Context, event *Event) error {
	msg, err := toMessage(ctx, event)
	if err != nil {
		return err
	}

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	p.logger.Debug("Published event",
		"event_id", event.ID,
		"event_type", event.Type,
		"topic", p.topic)
	return nil
}

func (p *BrokerPublisher) Close() error {
	return p.publisher.Close()
}

func toMessage(ctx context.Context, event *Event) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("version", event.Version)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339))
	if key := partitionKey(event); key != "" {
		msg.Metadata.Set(partitionKeyMetadata, key)
	}
	return msg, nil
}

const partitionKeyMetadata = "partition_key"

func partitionKey(event *Event) string {
	switch data := event.Data.(type) {
	case QuizCreatedEvent:
		return data.QuizID
	case QuizDeletedEvent:
		return data.QuizID
	case AttemptSubmittedEvent:
		return data.QuizID
	case UserDeletedEvent:
		return data.UserID
	}
	return ""
}

// MockEventPublisher keeps events in memory. It is used in tests and when
// publishing is disabled.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []Event
	Logger *slog.Logger

	// Err, when set, is returned by Publish instead of recording the event.
	Err error
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{
		events: make([]Event, 0),
		Logger: logger,
	}
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.events = append(m.events, *event)
	m.Logger.Debug("Mock: Published event",
		"event_id", event.ID,
		"event_type", event.Type)
	return nil
}

// Close is a no-op for the mock publisher
func (m *MockEventPublisher) Close() error {
	return nil
}

// GetPublishedEvents returns a copy of everything published so far
func (m *MockEventPublisher) GetPublishedEvents() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = make([]Event, 0)
}
