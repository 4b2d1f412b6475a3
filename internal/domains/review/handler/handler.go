package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/dedup"
	"bookshelf-backend/internal/domains/author"
	bookModel "bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/domains/review/model"
	"bookshelf-backend/internal/domains/review/service"
	"bookshelf-backend/internal/shared/middleware"
	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/internal/shared/utils"
)

// =====================================================
// REVIEW HANDLER
// =====================================================

type ReviewHandler struct {
	reviewService service.ServiceInterface
}

func NewReviewHandler(reviewService service.ServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// =====================================================
// USER ENDPOINTS
// =====================================================

// CreateReview godoc
// @Summary Create review
// @Tags Reviews
// @Accept json
// @Produce json
// @Param request body model.CreateReviewRequest true "Review data"
// @Success 201 {object} response.Response{data=model.ReviewResponse}
// @Failure 404 {object} response.Response "Book not found"
// @Failure 409 {object} response.Response "Already reviewed"
// @Failure 503 {object} response.Response "Book catalog unavailable"
// @Router /reviews [post]
// @Security BearerAuth
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, review)
}

// CreateReviewWithBook - POST /api/reviews/with-book
// Author và book đi qua dedup resolver trước khi tạo review
func (h *ReviewHandler) CreateReviewWithBook(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.CreateReviewWithBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.reviewService.CreateReviewWithBook(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// GetReview - GET /api/reviews/:id
func (h *ReviewHandler) GetReview(c *gin.Context) {
	reviewID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid review ID")
		return
	}

	review, err := h.reviewService.GetReview(c.Request.Context(), reviewID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, review)
}

// UpdateReview - PUT /api/reviews/:id (owner only)
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	reviewID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid review ID")
		return
	}

	var req model.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), userID, reviewID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, review)
}

// DeleteReview - DELETE /api/reviews/:id (owner only)
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	reviewID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid review ID")
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), userID, reviewID); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":   "Review deleted successfully",
		"review_id": reviewID,
	})
}

// MarkHelpful - POST /api/reviews/:id/mark-helpful
func (h *ReviewHandler) MarkHelpful(c *gin.Context) {
	reviewID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid review ID")
		return
	}

	review, err := h.reviewService.MarkHelpful(c.Request.Context(), reviewID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, review)
}

// =====================================================
// PUBLIC ENDPOINTS
// =====================================================

// ListBookReviews - GET /api/books/:id/reviews?limit=10&skip=0&sort_by=recent|helpful
func (h *ReviewHandler) ListBookReviews(c *gin.Context) {
	bookID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid book ID")
		return
	}
	page := utils.ParsePagination(c, 10, 100)
	sortBy := model.NormalizeSort(c.Query("sort_by"))

	reviews, err := h.reviewService.ListBookReviews(c.Request.Context(), bookID, sortBy, page.Limit, page.Skip)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, reviews, &response.Meta{
		Limit: page.Limit,
		Skip:  page.Skip,
		Count: len(reviews),
	})
}

// GetBookRating - GET /api/books/:id/rating
func (h *ReviewHandler) GetBookRating(c *gin.Context) {
	bookID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid book ID")
		return
	}

	rating, err := h.reviewService.GetBookRating(c.Request.Context(), bookID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, rating)
}

// GetUserReviewOfBook - GET /api/users/:uid/review-of/:bid
func (h *ReviewHandler) GetUserReviewOfBook(c *gin.Context) {
	userID, ok := utils.ParseUUIDParam(c, "uid")
	if !ok {
		response.BadRequest(c, "Invalid user ID")
		return
	}
	bookID, ok := utils.ParseUUIDParam(c, "bid")
	if !ok {
		response.BadRequest(c, "Invalid book ID")
		return
	}

	review, err := h.reviewService.GetUserReviewOfBook(c.Request.Context(), userID, bookID)
	if err != nil {
		if errors.Is(err, model.ErrReviewNotFound) {
			response.NotFound(c, "User has not reviewed this book")
			return
		}
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, review)
}

// HasReviewed - GET /api/users/me/reviewed/:bid
func (h *ReviewHandler) HasReviewed(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	bookID, ok := utils.ParseUUIDParam(c, "bid")
	if !ok {
		response.BadRequest(c, "Invalid book ID")
		return
	}

	res, err := h.reviewService.HasReviewed(c.Request.Context(), userID, bookID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// =====================================================
// ERROR HANDLING
// =====================================================

func (h *ReviewHandler) handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	var revErr *model.ReviewError

	switch {
	case errors.As(err, &verrs):
		response.ValidationError(c, err)

	case errors.Is(err, model.ErrAlreadyReviewed):
		if errors.As(err, &revErr) {
			response.ErrorWithDetails(c, http.StatusConflict, revErr.Code, revErr.Message, gin.H{"review_id": revErr.ReviewID})
			return
		}
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeAlreadyReviewed, err.Error())

	case errors.Is(err, model.ErrForbidden):
		response.ErrorResponse(c, http.StatusForbidden, model.ErrCodeForbidden, err.Error())

	case errors.Is(err, model.ErrReviewNotFound),
		errors.Is(err, model.ErrBookNotFound):
		response.ErrorResponse(c, http.StatusNotFound, model.ErrorCode(err), err.Error())

	case errors.Is(err, model.ErrCatalogUnavailable):
		response.ErrorResponse(c, http.StatusServiceUnavailable, model.ErrCodeCatalogUnavailable, "Book catalog unavailable")

	// with-book: lỗi từ author/book domain
	case errors.Is(err, bookModel.ErrAuthorNotFound):
		response.NotFound(c, bookModel.ErrAuthorNotFound.Error())
	case errors.Is(err, bookModel.ErrDuplicateISBN):
		response.Conflict(c, bookModel.ErrDuplicateISBN.Error())
	case errors.Is(err, model.ErrInvalidBookReference),
		errors.Is(err, bookModel.ErrInvalidTitle),
		errors.Is(err, author.ErrInvalidName),
		errors.Is(err, dedup.ErrInvalidInput):
		response.BadRequest(c, err.Error())

	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Review request failed")
		response.ServiceUnavailable(c, "Review service is temporarily unavailable")
	}
}
