package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	ReviewCreated = "review.created"
	ReviewUpdated = "review.updated"
	ReviewDeleted = "review.deleted"

	PostCreated = "post.created"
	PostUpdated = "post.updated"
	PostDeleted = "post.deleted"
)

// Event là envelope chung cho mọi message trên reviews-events và posts-events
type Event struct {
	EventType string          `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent marshals data into an envelope stamped with the current UTC time.
func NewEvent(eventType string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		EventType: eventType,
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Data:      raw,
	}, nil
}

// Decode unmarshals Data vào dest
func (e Event) Decode(dest any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("event %s has no data", e.EventType)
	}
	return json.Unmarshal(e.Data, dest)
}

type ReviewEventData struct {
	ReviewID string `json:"review_id"`
	BookID   string `json:"book_id"`
	UserID   string `json:"user_id"`
	Rating   int    `json:"rating,omitempty"`
}

type PostEventData struct {
	PostID   string `json:"post_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	Title    string `json:"title,omitempty"`
	Content  string `json:"content,omitempty"`
}
