package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/author"
	"bookshelf-backend/internal/shared/middleware"
	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/internal/shared/utils"
)

type AuthorHandler struct {
	service author.Service
}

func NewAuthorHandler(svc author.Service) *AuthorHandler {
	return &AuthorHandler{
		service: svc,
	}
}

// ════════════════════════════════════════════════════════════════
// CREATE: POST /api/authors
// 201 khi tạo mới, 200 khi tên khớp với author đã có
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) Create(c *gin.Context) {
	var req author.CreateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req, middleware.OptionalUserID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	response.Success(c, status, resp)
}

// ════════════════════════════════════════════════════════════════
// READ
// ════════════════════════════════════════════════════════════════

// Search - GET /api/authors/search?q=&limit=10
func (h *AuthorHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.BadRequest(c, "Search query 'q' is required")
		return
	}
	page := utils.ParsePagination(c, 10, 100)

	authors, err := h.service.Search(c.Request.Context(), q, page.Limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, toResponses(authors))
}

// Resolve - GET /api/authors/resolve?name=
func (h *AuthorHandler) Resolve(c *gin.Context) {
	name := c.Query("name")
	if strings.TrimSpace(name) == "" {
		response.BadRequest(c, "Query parameter 'name' is required")
		return
	}

	resp, err := h.service.Resolve(c.Request.Context(), name)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// GetByID - GET /api/authors/:id
func (h *AuthorHandler) GetByID(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid author ID")
		return
	}

	a, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, a.ToResponse())
}

// List - GET /api/authors?limit=50&skip=0
func (h *AuthorHandler) List(c *gin.Context) {
	page := utils.ParsePagination(c, 50, 200)

	authors, total, err := h.service.List(c.Request.Context(), page.Limit, page.Skip)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, toResponses(authors), &response.Meta{
		Limit: page.Limit,
		Skip:  page.Skip,
		Count: len(authors),
		Total: total,
	})
}

// ════════════════════════════════════════════════════════════════
// HELPERS
// ════════════════════════════════════════════════════════════════

func toResponses(authors []author.Author) []author.AuthorResponse {
	out := make([]author.AuthorResponse, len(authors))
	for i := range authors {
		out[i] = authors[i].ToResponse()
	}
	return out
}

func (h *AuthorHandler) handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ValidationError(c, err)
		return
	}

	status := author.ToHTTPStatus(err)
	if status == http.StatusServiceUnavailable {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Author request failed")
		response.ServiceUnavailable(c, "Author catalog is temporarily unavailable")
		return
	}
	response.ErrorResponse(c, status, author.ToErrorCode(err), err.Error())
}
