package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf-backend/internal/domains/user"
)

type stubService struct {
	registerErr error
	loginErr    error
	validateErr error
	validated   *user.ValidateResponse
}

func (s *stubService) Register(_ context.Context, req user.RegisterRequest) (*user.UserDTO, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &user.UserDTO{ID: uuid.New(), Email: req.Email, Username: req.Username}, nil
}

func (s *stubService) Login(context.Context, user.LoginRequest) (*user.TokenResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &user.TokenResponse{AccessToken: "tok", TokenType: "bearer", ExpiresIn: 86400}, nil
}

func (s *stubService) ValidateToken(context.Context, string) (*user.ValidateResponse, error) {
	return s.validated, s.validateErr
}

func newRouter(svc user.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewUserHandler(svc)
	r := gin.New()
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	r.GET("/api/auth/validate", h.Validate)
	return r
}

func doJSON(r http.Handler, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister_StatusCodes(t *testing.T) {
	valid := map[string]string{"email": "a@example.com", "username": "alpha", "password": "password1"}

	tests := []struct {
		name string
		svc  *stubService
		body any
		want int
	}{
		{"created", &stubService{}, valid, http.StatusCreated},
		{"email taken", &stubService{registerErr: user.ErrEmailAlreadyExists}, valid, http.StatusBadRequest},
		{"username taken", &stubService{registerErr: user.ErrUsernameTaken}, valid, http.StatusBadRequest},
		{"invalid body", &stubService{}, map[string]string{"email": "nope"}, http.StatusBadRequest},
		{"password over bcrypt limit", &stubService{}, map[string]string{"email": "a@example.com", "username": "alpha", "password": strings.Repeat("p", 100)}, http.StatusBadRequest},
		{"store down", &stubService{registerErr: errors.New("db down")}, valid, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(newRouter(tt.svc), http.MethodPost, "/api/auth/register", tt.body, nil)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	w := doJSON(newRouter(&stubService{loginErr: user.ErrInvalidCredentials}), http.MethodPost, "/api/auth/login",
		map[string]string{"email": "a@example.com", "password": "x"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestValidate_SetsHeaders(t *testing.T) {
	id := uuid.New()
	svc := &stubService{validated: &user.ValidateResponse{Valid: true, UserID: id, Email: "a@example.com"}}

	w := doJSON(newRouter(svc), http.MethodGet, "/api/auth/validate", nil, map[string]string{"Authorization": "Bearer tok"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id.String(), w.Header().Get("X-User-ID"))
	assert.Equal(t, "a@example.com", w.Header().Get("X-User-Email"))

	w = doJSON(newRouter(svc), http.MethodGet, "/api/auth/validate", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(newRouter(&stubService{validateErr: user.ErrInvalidToken}), http.MethodGet, "/api/auth/validate", nil,
		map[string]string{"Authorization": "Bearer bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
