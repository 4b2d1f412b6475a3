package user

import (
	"errors"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// MaxPasswordBytes là giới hạn của bcrypt, tính theo byte chứ không theo ký tự
const MaxPasswordBytes = 72

// ========================================
// AUTH DTOs
// ========================================

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Normalize lowercases the email and trims both identifiers.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("invalid email format"),
			validation.Length(5, 255),
		),
		validation.Field(&r.Username,
			validation.Required.Error("username is required"),
			validation.Length(3, 50),
			validation.Match(usernamePattern).Error("username may only contain letters, digits, '.', '_' and '-'"),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.RuneLength(8, 0).Error("password must be at least 8 characters"),
			validation.By(passwordFitsBcrypt),
		),
	)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// TokenResponse: token_type luôn là "bearer", expires_in tính bằng giây
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type ValidateResponse struct {
	Valid  bool      `json:"valid"`
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func passwordFitsBcrypt(value interface{}) error {
	if p, ok := value.(string); ok && len(p) > MaxPasswordBytes {
		return errors.New("password must be at most 72 bytes")
	}
	return nil
}
