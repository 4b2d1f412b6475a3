package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/dedup"
	"bookshelf-backend/internal/domains/book/model"
	service "bookshelf-backend/internal/domains/book/service"
	"bookshelf-backend/internal/shared/middleware"
	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/internal/shared/utils"
)

// MaxImportFileSize giới hạn file CSV upload
const MaxImportFileSize = 5 << 20

// Handler - HTTP handler cho /api/books và /api/authors/:id/books
type Handler struct {
	service  service.ServiceInterface
	importer service.ImportServiceInterface
}

// NewHandler - Constructor with DI
func NewHandler(svc service.ServiceInterface, importer service.ImportServiceInterface) *Handler {
	return &Handler{
		service:  svc,
		importer: importer,
	}
}

// CreateBook - POST /api/books
// 201 khi tạo mới, 200 khi title trùng với sách đã có của cùng author
func (h *Handler) CreateBook(c *gin.Context) {
	var req model.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.CreateBook(c.Request.Context(), req, middleware.OptionalUserID(c))
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

// GetBook - GET /api/books/:id
func (h *Handler) GetBook(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid book ID")
		return
	}

	book, err := h.service.GetBook(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, book)
}

// ListBooks - GET /api/books?limit=50&skip=0
func (h *Handler) ListBooks(c *gin.Context) {
	page := utils.ParsePagination(c, 50, 200)

	books, total, err := h.service.ListBooks(c.Request.Context(), page.Limit, page.Skip)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, books, &response.Meta{
		Limit: page.Limit,
		Skip:  page.Skip,
		Count: len(books),
		Total: total,
	})
}

// ListByAuthor - GET /api/authors/:id/books
func (h *Handler) ListByAuthor(c *gin.Context) {
	authorID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid author ID")
		return
	}
	page := utils.ParsePagination(c, 50, 200)

	books, err := h.service.ListByAuthor(c.Request.Context(), authorID, page.Limit, page.Skip)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, books, &response.Meta{
		Limit: page.Limit,
		Skip:  page.Skip,
		Count: len(books),
	})
}

// ========================= SEARCH =====================

// Autocomplete - GET /api/books/titles/autocomplete?q=&limit=10
func (h *Handler) Autocomplete(c *gin.Context) {
	q, ok := requireQuery(c)
	if !ok {
		return
	}
	page := utils.ParsePagination(c, 10, 50)

	titles, err := h.service.AutocompleteTitles(c.Request.Context(), q, page.Limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, titles)
}

// SearchByTitle - GET /api/books/search-by-title?q=&limit=10
func (h *Handler) SearchByTitle(c *gin.Context) {
	q, ok := requireQuery(c)
	if !ok {
		return
	}
	page := utils.ParsePagination(c, 10, 100)

	books, err := h.service.SearchByTitle(c.Request.Context(), q, page.Limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, books)
}

// SearchBooks - GET /api/books/search?q=&author_id=&genre=&limit=20
func (h *Handler) SearchBooks(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	page := utils.ParsePagination(c, 20, 100)
	filter.Limit, filter.Skip = page.Limit, page.Skip

	books, err := h.service.SearchBooks(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, books)
}

// ========================= UPDATE / DELETE =====================

// UpdateBook - PUT /api/books/:id
func (h *Handler) UpdateBook(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid book ID")
		return
	}

	var req model.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	book, err := h.service.UpdateBook(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, book)
}

// DeleteBook - DELETE /api/books/:id
func (h *Handler) DeleteBook(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid book ID")
		return
	}

	resp, err := h.service.DeleteBook(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// ========================= IMPORT / EXPORT =====================

// ImportBooks - POST /api/books/import (multipart, field "file")
func (h *Handler) ImportBooks(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required (multipart/form-data)")
		return
	}
	if file.Size > MaxImportFileSize {
		response.BadRequest(c, fmt.Sprintf("file exceeds %dMB", MaxImportFileSize>>20))
		return
	}

	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "cannot open uploaded file")
		return
	}
	defer src.Close()

	userID := middleware.OptionalUserID(c)
	log.Info().
		Str("file_name", file.Filename).
		Int64("file_size", file.Size).
		Msg("[BookImport] Received import request")

	result, err := h.importer.ImportBooks(c.Request.Context(), src, userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	status := http.StatusCreated
	if result.CreatedBooks == 0 {
		status = http.StatusOK
	}
	response.Success(c, status, result)
}

// ExportBooks - GET /api/books/export?q=&author_id=&genre= → xlsx
func (h *Handler) ExportBooks(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	f, count, err := h.service.ExportBooksToExcel(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("books_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		log.Error().Err(err).Int("rows", count).Msg("Failed to write xlsx export")
	}
}

// ========================= HELPERS =====================

func requireQuery(c *gin.Context) (string, bool) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.BadRequest(c, "Search query 'q' is required")
		return "", false
	}
	return q, true
}

func parseFilter(c *gin.Context) (model.SearchFilter, bool) {
	authorID, err := utils.ParseOptionalUUID(c.Query("author_id"))
	if err != nil {
		response.BadRequest(c, "Invalid author_id")
		return model.SearchFilter{}, false
	}
	return model.SearchFilter{
		Query:    c.Query("q"),
		AuthorID: authorID,
		Genre:    c.Query("genre"),
	}, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		response.ValidationError(c, err)

	case errors.Is(err, model.ErrBookNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, model.ErrAuthorNotFound):
		response.NotFound(c, err.Error())

	case errors.Is(err, model.ErrDuplicateISBN):
		response.Conflict(c, err.Error())
	case errors.Is(err, dedup.ErrUniquenessViolation):
		response.Conflict(c, model.ErrDuplicateTitle.Error())

	case errors.Is(err, model.ErrInvalidTitle),
		errors.Is(err, model.ErrInvalidImportFile),
		errors.Is(err, dedup.ErrInvalidInput):
		response.BadRequest(c, err.Error())

	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Book request failed")
		response.ServiceUnavailable(c, "Book catalog is temporarily unavailable")
	}
}
