package post

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	MaxTitleLength   = 255
	MaxContentLength = 20000
	MaxTags          = 20
)

type CreatePostRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

func (r *CreatePostRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	r.Tags = trimTags(r.Tags)
}

func (r CreatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, MaxTitleLength)),
		validation.Field(&r.Content, validation.Required, validation.RuneLength(1, MaxContentLength)),
		validation.Field(&r.Tags, validation.Length(0, MaxTags)),
	)
}

// UpdatePostRequest: field nil thì giữ nguyên
type UpdatePostRequest struct {
	Title   *string  `json:"title,omitempty"`
	Content *string  `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

func (r *UpdatePostRequest) Normalize() {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		r.Title = &title
	}
	if r.Content != nil {
		content := strings.TrimSpace(*r.Content)
		r.Content = &content
	}
	r.Tags = trimTags(r.Tags)
}

func (r UpdatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.RuneLength(1, MaxTitleLength)),
		validation.Field(&r.Content, validation.NilOrNotEmpty, validation.RuneLength(1, MaxContentLength)),
		validation.Field(&r.Tags, validation.Length(0, MaxTags)),
	)
}

func (r UpdatePostRequest) Apply(p *Post) {
	if r.Title != nil {
		p.Title = *r.Title
	}
	if r.Content != nil {
		p.Content = *r.Content
	}
	if r.Tags != nil {
		p.Tags = r.Tags
	}
}

type PostResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func trimTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
