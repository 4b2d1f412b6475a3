package user

import "context"

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*UserDTO, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (*ValidateResponse, error)
}
