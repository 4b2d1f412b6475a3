package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/feed"
	"bookshelf-backend/internal/shared/middleware"
	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/internal/shared/utils"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// FeedHandler xử lý /api/activity-stream
type FeedHandler struct {
	service feed.Service
}

func NewFeedHandler(service feed.Service) *FeedHandler {
	return &FeedHandler{service: service}
}

// Global - GET /api/activity-stream?limit=20&skip=0
func (h *FeedHandler) Global(c *gin.Context) {
	page := utils.ParsePagination(c, defaultLimit, maxLimit)

	stream, err := h.service.Global(c.Request.Context(), page.Skip, page.Limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stream)
}

// Mine - GET /api/activity-stream/user
func (h *FeedHandler) Mine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	page := utils.ParsePagination(c, defaultLimit, maxLimit)

	stream, err := h.service.ForUser(c.Request.Context(), userID.String(), page.Skip, page.Limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stream)
}

// Stats - GET /api/activity-stream/stats
func (h *FeedHandler) Stats(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.Stats(c.Request.Context()))
}

func (h *FeedHandler) handleError(c *gin.Context, err error) {
	log.Error().Err(err).Str("path", c.FullPath()).Msg("Activity stream request failed")
	response.ServiceUnavailable(c, "Activity stream unavailable")
}
