package feed

import "context"

// Store giữ các activity list đã cắt theo giới hạn
type Store interface {
	Push(ctx context.Context, item ActivityItem) error
	Range(ctx context.Context, key string, skip, limit int) ([]ActivityItem, error)
	Len(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
}
