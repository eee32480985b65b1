// Package events publishes document authentication results to the downstream
// consumer.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"docauth/internal/docauth/models"
	"docauth/internal/platform/kafka/producer"
)

// RoutingKey is the fixed logical destination understood by the downstream
// documents consumer.
const RoutingKey = "document.authentication.completed"

// Publisher delivers a result event to the downstream consumer.
type Publisher interface {
	PublishResult(ctx context.Context, event models.ResultEvent) error
}

// Producer is the minimal producing surface needed from the Kafka client.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaPublisher publishes result events through the shared Kafka producer.
type KafkaPublisher struct {
	producer Producer
	topic    string
	logger   *slog.Logger
}

var _ Publisher = (*KafkaPublisher)(nil)

// Option configures the KafkaPublisher.
type Option func(*KafkaPublisher)

// WithTopic overrides the destination topic.
func WithTopic(topic string) Option {
	return func(p *KafkaPublisher) {
		if topic != "" {
			p.topic = topic
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *KafkaPublisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewKafkaPublisher creates a publisher bound to the result routing key.
func NewKafkaPublisher(prod Producer, opts ...Option) *KafkaPublisher {
	p := &KafkaPublisher{
		producer: prod,
		topic:    RoutingKey,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PublishResult hands one result event to the transport and waits for the
// delivery acknowledgement.
func (p *KafkaPublisher) PublishResult(ctx context.Context, event models.ResultEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal result event: %w", err)
	}

	// Partition by citizen so a consumer sees one citizen's results in order.
	key := strconv.FormatInt(event.IDCitizen, 10)

	msg := &producer.Message{
		Topic: p.topic,
		Key:   []byte(key),
		Value: payload,
	}
	if event.MessageID != "" {
		msg.Headers = map[string]string{"x-message-id": event.MessageID}
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("publish result event: %w", err)
	}

	p.logger.Debug("published result event",
		"topic", p.topic,
		"id_citizen", event.IDCitizen,
		"authenticated", event.Authenticated,
	)
	return nil
}
