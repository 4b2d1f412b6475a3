package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// ProfileRequest dùng cho cả POST và PUT /api/profile; PUT chỉ ghi các field khác nil
type ProfileRequest struct {
	FirstName   *string         `json:"first_name,omitempty"`
	LastName    *string         `json:"last_name,omitempty"`
	DOB         *string         `json:"dob,omitempty"`
	Address     *string         `json:"address,omitempty"`
	City        *string         `json:"city,omitempty"`
	State       *string         `json:"state,omitempty"`
	ZipCode     *string         `json:"zip_code,omitempty"`
	Country     *string         `json:"country,omitempty"`
	Phone       *string         `json:"phone,omitempty"`
	Bio         *string         `json:"bio,omitempty"`
	Preferences json.RawMessage `json:"preferences,omitempty"`
}

func (r ProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.RuneLength(0, 100)),
		validation.Field(&r.LastName, validation.RuneLength(0, 100)),
		validation.Field(&r.DOB, validation.Date(DateLayout)),
		validation.Field(&r.City, validation.RuneLength(0, 100)),
		validation.Field(&r.State, validation.RuneLength(0, 100)),
		validation.Field(&r.ZipCode, validation.RuneLength(0, 20)),
		validation.Field(&r.Country, validation.RuneLength(0, 100)),
		validation.Field(&r.Phone, validation.RuneLength(0, 30), is.PrintableASCII),
		validation.Field(&r.Bio, validation.RuneLength(0, 5000)),
		validation.Field(&r.Preferences, validation.By(jsonObject)),
	)
}

// Apply copies every non-nil field onto p. DOB must already be validated.
func (r ProfileRequest) Apply(p *Profile) {
	set := func(dst **string, src *string) {
		if src != nil {
			*dst = src
		}
	}
	set(&p.FirstName, r.FirstName)
	set(&p.LastName, r.LastName)
	set(&p.Address, r.Address)
	set(&p.City, r.City)
	set(&p.State, r.State)
	set(&p.ZipCode, r.ZipCode)
	set(&p.Country, r.Country)
	set(&p.Phone, r.Phone)
	set(&p.Bio, r.Bio)

	if r.DOB != nil {
		if t, err := time.Parse(DateLayout, *r.DOB); err == nil {
			p.DOB = &t
		}
	}
	if len(r.Preferences) > 0 {
		p.Preferences = r.Preferences
	}
}

type ProfileResponse struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	FirstName   *string         `json:"first_name"`
	LastName    *string         `json:"last_name"`
	DOB         *string         `json:"dob"`
	Address     *string         `json:"address"`
	City        *string         `json:"city"`
	State       *string         `json:"state"`
	ZipCode     *string         `json:"zip_code"`
	Country     *string         `json:"country"`
	Phone       *string         `json:"phone"`
	Bio         *string         `json:"bio"`
	Preferences json.RawMessage `json:"preferences"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func jsonObject(value interface{}) error {
	raw, _ := value.(json.RawMessage)
	if len(raw) == 0 {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return errors.New("must be a JSON object")
	}
	return nil
}
