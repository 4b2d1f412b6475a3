package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/user"
	"bookshelf-backend/internal/shared/middleware"
	"bookshelf-backend/internal/shared/response"
)

// UserHandler xử lý /api/auth
type UserHandler struct {
	service user.Service
}

func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{service: service}
}

// Register xử lý POST /api/auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		response.ValidationError(c, err)
		return
	}

	dto, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, dto)
}

// Login xử lý POST /api/auth/login
func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.ValidationError(c, err)
		return
	}

	tok, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, tok)
}

// Validate xử lý GET /api/auth/validate, dùng cho forward-auth: user được trả cả trong body và header
func (h *UserHandler) Validate(c *gin.Context) {
	token, ok := middleware.BearerToken(c.GetHeader("Authorization"))
	if !ok {
		response.Unauthorized(c, "Missing or malformed authorization header")
		return
	}

	res, err := h.service.ValidateToken(c.Request.Context(), token)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("X-User-ID", res.UserID.String())
	c.Header("X-User-Email", res.Email)
	response.Success(c, http.StatusOK, res)
}

func (h *UserHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, user.ErrEmailAlreadyExists),
		errors.Is(err, user.ErrUsernameTaken):
		response.BadRequest(c, err.Error())

	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, user.ErrInvalidToken):
		response.Unauthorized(c, err.Error())

	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Auth request failed")
		response.ServiceUnavailable(c, "Authentication service unavailable")
	}
}
