package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/feed"
)

type redisStore struct {
	client      redis.UniversalClient
	globalLimit int64
	userLimit   int64
}

// NewRedisStore giữ tối đa globalLimit item ở stream chung và userLimit item mỗi user.
// Giá trị <= 0 dùng default.
func NewRedisStore(client redis.UniversalClient, globalLimit, userLimit int64) feed.Store {
	if globalLimit <= 0 {
		globalLimit = feed.DefaultGlobalLimit
	}
	if userLimit <= 0 {
		userLimit = feed.DefaultUserLimit
	}
	return &redisStore{client: client, globalLimit: globalLimit, userLimit: userLimit}
}

// Push ghi item vào đầu cả hai list rồi cắt, trong một pipeline
func (s *redisStore) Push(ctx context.Context, item feed.ActivityItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal activity item: %w", err)
	}

	userKey := feed.UserKey(item.UserID)
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, feed.GlobalKey, payload)
		pipe.LTrim(ctx, feed.GlobalKey, 0, s.globalLimit-1)
		pipe.LPush(ctx, userKey, payload)
		pipe.LTrim(ctx, userKey, 0, s.userLimit-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: push activity: %v", feed.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *redisStore) Range(ctx context.Context, key string, skip, limit int) ([]feed.ActivityItem, error) {
	raw, err := s.client.LRange(ctx, key, int64(skip), int64(skip+limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: lrange %s: %v", feed.ErrStoreUnavailable, key, err)
	}

	items := make([]feed.ActivityItem, 0, len(raw))
	for _, entry := range raw {
		var item feed.ActivityItem
		if err := json.Unmarshal([]byte(entry), &item); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Skipping corrupt activity item")
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *redisStore) Len(ctx context.Context, key string) (int64, error) {
	n, err := s.client.LLen(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: llen %s: %v", feed.ErrStoreUnavailable, key, err)
	}
	return n, nil
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
