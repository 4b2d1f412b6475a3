package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/feed"
	"bookshelf-backend/internal/infrastructure/messaging"
	"bookshelf-backend/internal/infrastructure/metrics"
)

type feedService struct {
	store       feed.Store
	metrics     *metrics.Metrics
	kafkaActive bool
	now         func() time.Time
}

// NewFeedService. kafkaActive chỉ dùng để báo trong Stats.
func NewFeedService(store feed.Store, m *metrics.Metrics, kafkaActive bool) feed.Service {
	return &feedService{
		store:       store,
		metrics:     m,
		kafkaActive: kafkaActive,
		now:         time.Now,
	}
}

// ========================================
// CONSUMER
// ========================================

// HandleEvent dựng activity item từ một post event.
// Event không dùng được bị log rồi bỏ qua (trả nil) để consumer đi tiếp.
func (s *feedService) HandleEvent(ctx context.Context, event messaging.Event) error {
	if !strings.HasPrefix(event.EventType, "post.") {
		s.metrics.RecordFeedEvent("ignored")
		log.Debug().Str("event_type", event.EventType).Msg("Feed ignores event type")
		return nil
	}

	var data messaging.PostEventData
	if err := event.Decode(&data); err != nil {
		s.metrics.RecordFeedEvent("invalid")
		log.Warn().Err(err).Str("event_type", event.EventType).Msg("Skipping undecodable post event")
		return nil
	}
	if data.PostID == "" || data.UserID == "" {
		s.metrics.RecordFeedEvent("invalid")
		log.Warn().Err(feed.ErrInvalidEvent).Str("event_type", event.EventType).Msg("Skipping post event")
		return nil
	}

	item := feed.ActivityItem{
		PostID:    data.PostID,
		UserID:    data.UserID,
		Username:  data.Username,
		EventType: event.EventType,
		Timestamp: event.Timestamp,
		Title:     data.Title,
		Content:   data.Content,
	}
	if item.Username == "" {
		item.Username = feed.DefaultUsername(data.UserID)
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = s.now().UTC()
	}

	if err := s.store.Push(ctx, item); err != nil {
		s.metrics.RecordFeedEvent("error")
		return err
	}

	s.metrics.RecordFeedEvent("processed")
	log.Info().
		Str("event_type", event.EventType).
		Str("post_id", item.PostID).
		Str("user_id", item.UserID).
		Msg("Activity item stored")
	return nil
}

// ========================================
// READ
// ========================================

func (s *feedService) Global(ctx context.Context, skip, limit int) (*feed.Page, error) {
	return s.page(ctx, feed.GlobalKey, skip, limit)
}

func (s *feedService) ForUser(ctx context.Context, userID string, skip, limit int) (*feed.Page, error) {
	return s.page(ctx, feed.UserKey(userID), skip, limit)
}

func (s *feedService) page(ctx context.Context, key string, skip, limit int) (*feed.Page, error) {
	items, err := s.store.Range(ctx, key, skip, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.store.Len(ctx, key)
	if err != nil {
		return nil, err
	}
	return &feed.Page{Items: items, Total: total, Limit: limit, Skip: skip}, nil
}

func (s *feedService) Stats(ctx context.Context) feed.Stats {
	stats := feed.Stats{KafkaConsumerActive: s.kafkaActive}

	if err := s.store.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Activity store ping failed")
		return stats
	}
	stats.RedisConnected = true

	count, err := s.store.Len(ctx, feed.GlobalKey)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count global activity")
		return stats
	}
	stats.GlobalActivityCount = count
	return stats
}
