package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bookshelf-backend/internal/domains/user"
	"bookshelf-backend/pkg/jwt"
)

type memoryRepo struct {
	mu      sync.Mutex
	byEmail map[string]*user.User
	err     error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byEmail: map[string]*user.User{}}
}

func (m *memoryRepo) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return user.ErrEmailAlreadyExists
	}
	m.byEmail[u.Email] = u
	return nil
}

func (m *memoryRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *memoryRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (m *memoryRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var emailTaken, usernameTaken bool
	for _, u := range m.byEmail {
		emailTaken = emailTaken || u.Email == email
		usernameTaken = usernameTaken || u.Username == username
	}
	return emailTaken, usernameTaken, nil
}

func newTestService(repo user.Repository) *userService {
	return newUserService(repo, jwt.NewManager("test-secret", 24*time.Hour), bcrypt.MinCost)
}

func TestRegisterLoginValidate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo())

	dto, err := svc.Register(ctx, user.RegisterRequest{Email: "  Reader@Example.com ", Username: "reader", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", dto.Email)

	tok, err := svc.Login(ctx, user.LoginRequest{Email: "reader@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)
	assert.Equal(t, 86400, tok.ExpiresIn)

	res, err := svc.ValidateToken(ctx, tok.AccessToken)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, dto.ID, res.UserID)
	assert.Equal(t, "reader@example.com", res.Email)
}

func TestRegister_Conflicts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo())

	_, err := svc.Register(ctx, user.RegisterRequest{Email: "a@example.com", Username: "alpha", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, user.RegisterRequest{Email: "a@example.com", Username: "beta", Password: "password1"})
	assert.ErrorIs(t, err, user.ErrEmailAlreadyExists)

	_, err = svc.Register(ctx, user.RegisterRequest{Email: "b@example.com", Username: "alpha", Password: "password1"})
	assert.ErrorIs(t, err, user.ErrUsernameTaken)

	_, err = svc.Register(ctx, user.RegisterRequest{Email: "c@example.com", Username: "gamma", Password: "short"})
	assert.Error(t, err)
}

func TestRegister_PasswordByteLimit(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"exactly 72 bytes", strings.Repeat("a", 72), false},
		{"100 ascii characters", strings.Repeat("a", 100), true},
		{"40 two-byte runes", strings.Repeat("é", 40), true},
		{"30 two-byte runes", strings.Repeat("é", 30), false},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryRepo()
			svc := newTestService(repo)
			req := user.RegisterRequest{Email: "reader@example.com", Username: "reader" + string(rune('a'+i)), Password: tt.password}

			_, err := svc.Register(ctx, req)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var verrs validation.Errors
			require.True(t, errors.As(err, &verrs), "want a validation error, got %v", err)
			assert.Contains(t, verrs, "password")
			assert.Empty(t, repo.byEmail)
		})
	}
}

func TestLogin_Failures(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	_, err := svc.Register(ctx, user.RegisterRequest{Email: "a@example.com", Username: "alpha", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, user.LoginRequest{Email: "a@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	_, err = svc.Login(ctx, user.LoginRequest{Email: "nobody@example.com", Password: "password1"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	repo.err = errors.New("db down")
	_, err = svc.Login(ctx, user.LoginRequest{Email: "a@example.com", Password: "password1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestValidateToken_Invalid(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	_, err := svc.ValidateToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, user.ErrInvalidToken)
}
