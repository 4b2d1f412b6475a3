package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/infrastructure/messaging"
	"bookshelf-backend/pkg/container"
)

// feedConsumer đọc posts-events và đẩy activity item vào Redis
type feedConsumer struct {
	consumer *messaging.Consumer
	cancel   context.CancelFunc
	done     chan struct{}
}

// startFeedConsumer trả về nil khi Kafka tắt
func startFeedConsumer(c *container.Container, cfg *Config) *feedConsumer {
	if !cfg.FeedEnabled {
		log.Info().Msg("[Feed] Kafka disabled, feed consumer not started")
		return nil
	}

	consumer := messaging.NewConsumer(messaging.ConsumerConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.PostsTopic,
		GroupID: cfg.FeedGroupID,
	}, c.FeedService.HandleEvent)

	ctx, cancel := context.WithCancel(context.Background())
	fc := &feedConsumer{consumer: consumer, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(fc.done)
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("[Feed] Consumer stopped with error")
		}
	}()
	return fc
}

func (f *feedConsumer) Shutdown() {
	if f == nil {
		return
	}
	log.Info().Msg("[Feed] Shutting down consumer")
	f.cancel()
	<-f.done
	if err := f.consumer.Close(); err != nil {
		log.Warn().Err(err).Msg("[Feed] Failed to close reader")
	}
}
