package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	portssvc "github.com/SscSPs/pos_reconciliation/internal/core/ports/services"
)

// KafkaEventPublisher writes ledger events to a single topic, keyed by record id so
// every event of one record lands on the same partition.
type KafkaEventPublisher struct {
	producer *Producer
	topic    string
	logger   *slog.Logger
}

// Ensure KafkaEventPublisher implements portssvc.EventPublisher
var _ portssvc.EventPublisher = (*KafkaEventPublisher)(nil)

// NewKafkaEventPublisher creates a publisher targeting the given producer and topic.
func NewKafkaEventPublisher(producer *Producer, topic string, logger *slog.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic, logger: logger}
}

// Publish serialises and sends ledger events.
func (p *KafkaEventPublisher) Publish(ctx context.Context, events ...domain.LedgerEvent) error {
	messages := make([]Message, 0, len(events))
	for _, evt := range events {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", evt.Type, err)
		}

		p.logger.DebugContext(ctx, "publishing ledger event",
			"event_type", evt.Type,
			"record_kind", evt.RecordKind,
			"record_id", evt.RecordID,
			"topic", p.topic,
			"payload_size", len(payload),
		)

		messages = append(messages, Message{
			Key:   []byte(domain.LockKey(evt.RecordKind, evt.RecordID)),
			Value: payload,
			Headers: map[string]string{
				"event_type": string(evt.Type),
				"event_id":   evt.ID,
			},
		})
	}

	if len(messages) == 0 {
		return nil
	}
	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}
	return nil
}

// NoopPublisher drops events. Used when no brokers are configured.
type NoopPublisher struct{}

// Ensure NoopPublisher implements portssvc.EventPublisher
var _ portssvc.EventPublisher = NoopPublisher{}

func (NoopPublisher) Publish(context.Context, ...domain.LedgerEvent) error { return nil }
