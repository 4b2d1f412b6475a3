package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// DefaultReadRetryDelay là thời gian chờ trước khi đọc lại sau lỗi broker
const DefaultReadRetryDelay = time.Second

// HandlerFunc xử lý một event đã decode
type HandlerFunc func(ctx context.Context, event Event) error

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Consumer đọc một topic trong consumer group và chuyển từng event cho handler
type Consumer struct {
	reader     messageReader
	handler    HandlerFunc
	topic      string
	retryDelay time.Duration
}

func NewConsumer(cfg ConsumerConfig, handler HandlerFunc) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  3 * time.Second,
	})

	return &Consumer{reader: reader, handler: handler, topic: cfg.Topic, retryDelay: DefaultReadRetryDelay}
}

// Run blocks until ctx is cancelled. Undecodable messages and handler
// failures are logged and skipped; offsets are committed by ReadMessage.
func (c *Consumer) Run(ctx context.Context) error {
	log.Info().Str("topic", c.topic).Msg("[KAFKA] Consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Str("topic", c.topic).Msg("[KAFKA] Consumer stopped")
				return ctx.Err()
			}
			// reader closed
			if errors.Is(err, io.EOF) {
				return err
			}
			log.Error().Err(err).Str("topic", c.topic).Dur("retry_in", c.retryDelay).Msg("[KAFKA] Failed to read message")
			if err := c.wait(ctx); err != nil {
				log.Info().Str("topic", c.topic).Msg("[KAFKA] Consumer stopped")
				return err
			}
			continue
		}

		var event Event
		if err := json.Unmarshal(msg.Value, &event); err != nil || event.EventType == "" {
			log.Warn().Err(err).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Str("raw_value", string(msg.Value)).
				Msg("[KAFKA] Skipping undecodable message")
			continue
		}

		if err := c.handler(ctx, event); err != nil {
			log.Error().Err(err).
				Str("event_type", event.EventType).
				Int64("offset", msg.Offset).
				Msg("[KAFKA] Handler failed")
		}
	}
}

// wait chờ retryDelay hoặc tới khi ctx bị huỷ
func (c *Consumer) wait(ctx context.Context) error {
	if c.retryDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
