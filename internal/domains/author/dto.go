package author

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	MaxNameLength = 255
	MaxBioLength  = 5000
)

// CreateAuthorRequest - POST /api/authors
type CreateAuthorRequest struct {
	Name string  `json:"name"`
	Bio  *string `json:"bio,omitempty"`
}

func (r *CreateAuthorRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			validation.By(notBlank),
			validation.RuneLength(1, MaxNameLength),
		),
		validation.Field(&r.Bio, validation.NilOrNotEmpty, validation.RuneLength(0, MaxBioLength)),
	)
}

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_blank", "must not be blank")
	}
	return nil
}

type AuthorResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Bio       *string   `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateAuthorResponse cho biết author được tạo mới hay khớp với một author đã có
type CreateAuthorResponse struct {
	Author  AuthorResponse `json:"author"`
	Created bool           `json:"created"`
	Match   string         `json:"match"`
	Score   float64        `json:"score"`
}

// ResolveResponse - GET /api/authors/resolve (dry run, không tạo gì)
type ResolveResponse struct {
	Query       string         `json:"query"`
	DisplayForm string         `json:"display_form"`
	MatchKey    string         `json:"match_key"`
	Match       string         `json:"match"`
	Score       float64        `json:"score"`
	Author      AuthorResponse `json:"author"`
}

type AuditReport struct {
	Checked    int             `json:"checked"`
	Threshold  float64         `json:"threshold"`
	Duplicates []DuplicatePair `json:"duplicates"`
}
