package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/post"
	"bookshelf-backend/internal/shared/middleware"
	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/internal/shared/utils"
)

// PostHandler xử lý /api/posts
type PostHandler struct {
	service post.Service
}

func NewPostHandler(service post.Service) *PostHandler {
	return &PostHandler{service: service}
}

// Create - POST /api/posts
func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req post.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

// Get - GET /api/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid post ID")
		return
	}

	resp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// List - GET /api/posts?user_id=&limit=10&skip=0
func (h *PostHandler) List(c *gin.Context) {
	userID, err := utils.ParseOptionalUUID(c.Query("user_id"))
	if err != nil {
		response.BadRequest(c, "Invalid user_id")
		return
	}
	page := utils.ParsePagination(c, 10, 100)

	posts, err := h.service.List(c.Request.Context(), post.ListFilter{UserID: userID, Limit: page.Limit, Skip: page.Skip})
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, posts, &response.Meta{
		Limit: page.Limit,
		Skip:  page.Skip,
		Count: len(posts),
	})
}

// Update - PUT /api/posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid post ID")
		return
	}

	var req post.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Delete - DELETE /api/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid post ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

func (h *PostHandler) handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		response.ValidationError(c, err)
	case errors.Is(err, post.ErrPostNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, post.ErrForbidden):
		response.Forbidden(c, post.ErrForbidden.Error())
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Post request failed")
		response.ServiceUnavailable(c, "Posts service unavailable")
	}
}
