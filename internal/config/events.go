package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/quiz-portal/internal/events"
)

// EventConfig controls where domain events go.
type EventConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Publisher    string `yaml:"publisher"` // kafka or mock
	KafkaBrokers string `yaml:"kafka_brokers"`
	Topic        string `yaml:"topic"`
}

// GetKafkaBrokers splits the comma separated broker list, dropping blanks.
func (c *EventConfig) GetKafkaBrokers() []string {
	var brokers []string
	for _, broker := range strings.Split(c.KafkaBrokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

// CreateEventPublisher returns the in-memory publisher unless Kafka publishing
// is enabled. Kafka without brokers or a topic is a configuration error.
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled || c.Publisher == "mock" {
		logger.Info("Event publishing disabled, keeping events in memory")
		return events.NewMockEventPublisher(logger), nil
	}
	if c.Publisher != "kafka" {
		logger.Warn("Unknown event publisher type, falling back to mock", "publisher", c.Publisher)
		return events.NewMockEventPublisher(logger), nil
	}

	brokers := c.GetKafkaBrokers()
	if len(brokers) == 0 || c.Topic == "" {
		return nil, fmt.Errorf("kafka publishing needs brokers and a topic")
	}

	logger.Info("Creating Kafka event publisher", "brokers", brokers, "topic", c.Topic)
	publisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
		KafkaBrokers: brokers,
		TopicName:    c.Topic,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	return publisher, nil
}
