package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bookshelf-backend/internal/infrastructure/metrics"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

const publishTimeout = 5 * time.Second

// Publisher phát domain event. Lỗi publish không được làm fail request đã ghi DB.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, event Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher ghi event qua một kafka.Writer dùng chung cho mọi topic
type KafkaPublisher struct {
	writer  messageWriter
	metrics *metrics.Metrics
}

func NewKafkaPublisher(brokers []string, m *metrics.Metrics) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}

	log.Info().Strs("brokers", brokers).Msg("[KAFKA] Producer initialized")
	return &KafkaPublisher{writer: w, metrics: m}
}

// Publish keys messages by entity id so events of one entity keep their order.
// The write runs detached from the caller's cancellation.
func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		p.metrics.RecordPublish(topic, err)
		return fmt.Errorf("marshal event: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  event.Timestamp,
	})
	p.metrics.RecordPublish(topic, err)
	if err != nil {
		log.Warn().Err(err).
			Str("topic", topic).
			Str("event_type", event.EventType).
			Msg("[KAFKA] Failed to publish event")
		return fmt.Errorf("publish %s: %w", event.EventType, err)
	}

	log.Debug().Str("topic", topic).Str("event_type", event.EventType).Str("key", key).Msg("[KAFKA] Event published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher dùng khi KAFKA_ENABLED=false
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, topic, key string, event Event) error {
	log.Debug().Str("topic", topic).Str("event_type", event.EventType).Msg("[KAFKA] Disabled, event dropped")
	return nil
}

func (NoopPublisher) Close() error { return nil }

// PublishBestEffort builds the envelope and publishes it, logging any failure.
func PublishBestEffort(ctx context.Context, p Publisher, topic, key, eventType string, data any) {
	if p == nil {
		return
	}
	event, err := NewEvent(eventType, data)
	if err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Msg("[KAFKA] Failed to build event")
		return
	}
	if err := p.Publish(ctx, topic, key, event); err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Str("key", key).Msg("[KAFKA] Event not delivered")
	}
}
