package feed

import (
	"fmt"
	"time"
)

const (
	GlobalKey     = "feed:activity:global"
	userKeyPrefix = "feed:activity:user:"

	DefaultGlobalLimit int64 = 1000
	DefaultUserLimit   int64 = 100
)

// UserKey trả về key Redis của activity stream theo user
func UserKey(userID string) string {
	return userKeyPrefix + userID
}

// ActivityItem là một phần tử trong activity stream, lưu dạng JSON trong Redis list
type ActivityItem struct {
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content,omitempty"`
}

// DefaultUsername is used when the event carries no username.
func DefaultUsername(userID string) string {
	return fmt.Sprintf("User %s", userID)
}

// Page là một đoạn của stream, newest first
type Page struct {
	Items []ActivityItem `json:"items"`
	Total int64          `json:"total"`
	Limit int            `json:"limit"`
	Skip  int            `json:"skip"`
}

type Stats struct {
	GlobalActivityCount int64 `json:"global_activity_count"`
	RedisConnected      bool  `json:"redis_connected"`
	KafkaConsumerActive bool  `json:"kafka_consumer_active"`
}
