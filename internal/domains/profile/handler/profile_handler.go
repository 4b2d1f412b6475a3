package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/profile"
	"bookshelf-backend/internal/shared/middleware"
	"bookshelf-backend/internal/shared/response"
)

// ProfileHandler xử lý /api/profile, luôn theo user của token
type ProfileHandler struct {
	service profile.Service
}

func NewProfileHandler(service profile.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Create(c *gin.Context) {
	h.write(c, http.StatusCreated, h.service.Create)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	h.write(c, http.StatusOK, h.service.Update)
}

func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	resp, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

func (h *ProfileHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Profile deleted successfully"})
}

type writeFunc func(ctx context.Context, userID uuid.UUID, req profile.ProfileRequest) (*profile.ProfileResponse, error)

func (h *ProfileHandler) write(c *gin.Context, status int, fn writeFunc) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req profile.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := fn(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, status, resp)
}

func (h *ProfileHandler) handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		response.ValidationError(c, err)
	case errors.Is(err, profile.ErrProfileExists):
		response.BadRequest(c, err.Error())
	case errors.Is(err, profile.ErrProfileNotFound):
		response.NotFound(c, err.Error())
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Profile request failed")
		response.ServiceUnavailable(c, "Profile service unavailable")
	}
}
