// Package events publishes record lifecycle events to Kafka. Downstream
// consumers (analytics, notifications) key on the provider record ID.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Event types emitted on the records topic.
const (
	RecordCreated = "record.created"
	RecordUpdated = "record.updated"
	RecordDeleted = "record.deleted"
)

// RecordEvent is the wire payload for record lifecycle events.
type RecordEvent struct {
	Type       string    `json:"type"`
	FormID     string    `json:"formId"`
	ResponseID string    `json:"responseId"`
	RecordID   string    `json:"recordId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher emits record events. A nil Publisher is valid and drops
// everything, so call sites never need to branch on whether Kafka is
// configured.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewPublisher connects a Kafka producer. Returns nil (disabled) when no
// brokers are configured.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Publisher{client: client, topic: topic, logger: logger}, nil
}

// Publish emits one event, keyed by record ID so per-record ordering holds.
// Delivery is asynchronous and best-effort; failures are logged, never
// returned into the request path.
func (p *Publisher) Publish(ctx context.Context, event RecordEvent) {
	if p == nil || p.client == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.WarnContext(ctx, "failed to encode event", "type", event.Type, "error", err)
		return
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.RecordID),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Warn("failed to publish event",
				"type", event.Type, "record_id", event.RecordID, "error", err)
		}
	})
}

// Close flushes pending events and releases the producer.
func (p *Publisher) Close(ctx context.Context) error {
	if p == nil || p.client == nil {
		return nil
	}
	if err := p.client.Flush(ctx); err != nil {
		return fmt.Errorf("flush events: %w", err)
	}
	p.client.Close()
	return nil
}
