package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// Enqueuer là phần của asynq.Client mà services cần, để test không cần Redis
type Enqueuer interface {
	EnqueueJSON(ctx context.Context, taskType string, payload any, opts ...asynq.Option) error
}

// Client bọc asynq.Client, payload luôn là JSON
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr, password string, db int) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr, Password: password, DB: db}),
	}
}

func (c *Client) EnqueueJSON(ctx context.Context, taskType string, payload any, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", taskType, err)
	}

	info, err := c.client.EnqueueContext(ctx, asynq.NewTask(taskType, data), opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}

	log.Debug().Str("task_id", info.ID).Str("type", taskType).Str("queue", info.Queue).Msg("[QUEUE] Task enqueued")
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// DefaultTaskOptions cho cover mirroring: queue low, retry 3 lần, timeout 2 phút
func DefaultTaskOptions(queue string) []asynq.Option {
	return []asynq.Option{
		asynq.Queue(queue),
		asynq.MaxRetry(3),
		asynq.Timeout(2 * time.Minute),
	}
}
