package author

import (
	"time"

	"github.com/google/uuid"

	"bookshelf-backend/internal/dedup"
)

// Author là một tác giả trong catalog. NameKey là match key của Name và không đổi sau khi tạo.
type Author struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	NameKey   string     `json:"name_key"`
	Bio       *string    `json:"bio,omitempty"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ToNamedEntity trả về view của author mà dedup resolver làm việc cùng
func (a *Author) ToNamedEntity() dedup.NamedEntity {
	return dedup.NamedEntity{
		ID:          a.ID,
		DisplayForm: a.Name,
		MatchKey:    a.NameKey,
		CreatedAt:   a.CreatedAt,
	}
}

func (a *Author) ToResponse() AuthorResponse {
	return AuthorResponse{
		ID:        a.ID,
		Name:      a.Name,
		Bio:       a.Bio,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// DuplicatePair là hai author có tên gần giống nhau, phát hiện bởi job audit
type DuplicatePair struct {
	First  dedup.NamedEntity `json:"first"`
	Second dedup.NamedEntity `json:"second"`
	Score  float64           `json:"score"`
}
