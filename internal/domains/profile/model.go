package profile

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DateLayout là format của dob trong request/response
const DateLayout = "2006-01-02"

// Profile: tối đa một profile cho mỗi user (user_id UNIQUE)
type Profile struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	FirstName   *string
	LastName    *string
	DOB         *time.Time
	Address     *string
	City        *string
	State       *string
	ZipCode     *string
	Country     *string
	Phone       *string
	Bio         *string
	Preferences json.RawMessage // JSONB, luôn là object
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Profile) ToResponse() ProfileResponse {
	var dob *string
	if p.DOB != nil {
		s := p.DOB.Format(DateLayout)
		dob = &s
	}
	prefs := p.Preferences
	if len(prefs) == 0 {
		prefs = json.RawMessage(`{}`)
	}
	return ProfileResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DOB:         dob,
		Address:     p.Address,
		City:        p.City,
		State:       p.State,
		ZipCode:     p.ZipCode,
		Country:     p.Country,
		Phone:       p.Phone,
		Bio:         p.Bio,
		Preferences: prefs,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
