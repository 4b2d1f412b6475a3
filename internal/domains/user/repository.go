package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository là data access contract của bảng users
type Repository interface {
	// Create trả về ErrEmailAlreadyExists / ErrUsernameTaken khi vi phạm unique
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByEmail trả về ErrUserNotFound nếu không có
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (emailTaken, usernameTaken bool, err error)
}
