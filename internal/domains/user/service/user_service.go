package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"bookshelf-backend/internal/domains/user"
	"bookshelf-backend/pkg/jwt"
)

// DefaultBcryptCost: 12, cân bằng giữa bảo mật và latency đăng nhập
const DefaultBcryptCost = 12

type userService struct {
	repo       user.Repository
	jwtManager *jwt.Manager
	bcryptCost int
	now        func() time.Time
}

func NewUserService(repo user.Repository, jwtManager *jwt.Manager) user.Service {
	return newUserService(repo, jwtManager, DefaultBcryptCost)
}

func newUserService(repo user.Repository, jwtManager *jwt.Manager, cost int) *userService {
	return &userService{
		repo:       repo,
		jwtManager: jwtManager,
		bcryptCost: cost,
		now:        time.Now,
	}
}

// ========================================
// AUTHENTICATION
// ========================================

func (s *userService) Register(ctx context.Context, req user.RegisterRequest) (*user.UserDTO, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	emailTaken, usernameTaken, err := s.repo.ExistsByEmailOrUsername(ctx, req.Email, req.Username)
	if err != nil {
		return nil, err
	}
	if emailTaken {
		return nil, user.ErrEmailAlreadyExists
	}
	if usernameTaken {
		return nil, user.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	u := &user.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Unique constraint vẫn là chốt chặn cuối nếu hai request đăng ký cùng lúc
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	log.Info().Str("user_id", u.ID.String()).Str("username", u.Username).Msg("User registered")
	dto := u.ToDTO()
	return &dto, nil
}

func (s *userService) Login(ctx context.Context, req user.LoginRequest) (*user.TokenResponse, error) {
	email := normalizeEmail(req.Email)

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, user.ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateAccessToken(u.ID.String(), u.Email)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &user.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.jwtManager.Expiry().Seconds()),
	}, nil
}

// ValidateToken chỉ verify chữ ký và hạn dùng, không đọc lại bảng users
func (s *userService) ValidateToken(ctx context.Context, token string) (*user.ValidateResponse, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, user.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return nil, user.ErrInvalidToken
	}

	return &user.ValidateResponse{Valid: true, UserID: userID, Email: claims.Email}, nil
}
