package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/dedup"
	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/domains/book/repository"
	"bookshelf-backend/internal/infrastructure/metrics"
	"bookshelf-backend/internal/infrastructure/queue"
	"bookshelf-backend/internal/infrastructure/storage"
	"bookshelf-backend/internal/shared"
)

const entityName = "title"

var _ ServiceInterface = (*BookService)(nil)

// BookService - Implements ServiceInterface
type BookService struct {
	repo     repository.RepositoryInterface
	resolver *dedup.Resolver
	queue    queue.Enqueuer
	storage  storage.ObjectStore
	metrics  *metrics.Metrics
	now      func() time.Time

	onDelete []DeleteHook
}

// DeleteHook chạy đồng bộ sau khi book đã bị xoá khỏi DB
type DeleteHook func(ctx context.Context, bookID uuid.UUID)

// NewService - Constructor with DI. queue, storage và metrics có thể nil.
func NewService(
	repo repository.RepositoryInterface,
	resolver *dedup.Resolver,
	enqueuer queue.Enqueuer,
	objectStore storage.ObjectStore,
	m *metrics.Metrics,
) *BookService {
	return &BookService{
		repo:     repo,
		resolver: resolver,
		queue:    enqueuer,
		storage:  objectStore,
		metrics:  m,
		now:      time.Now,
	}
}

// OnDelete đăng ký hook cho DeleteBook. Gọi lúc wiring, trước khi phục vụ request.
func (s *BookService) OnDelete(hook DeleteHook) {
	s.onDelete = append(s.onDelete, hook)
}

// ============================================
// CREATE
// ============================================

func (s *BookService) CreateBook(ctx context.Context, req model.CreateBookRequest, createdBy *uuid.UUID) (*model.CreateBookResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.AuthorExists(ctx, req.AuthorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrAuthorNotFound
	}

	var inserted *model.Book
	insert := func(ctx context.Context, name dedup.CanonicalName) (*dedup.NamedEntity, error) {
		now := s.now().UTC()
		b := &model.Book{
			ID:              uuid.New(),
			Title:           req.Title,
			TitleKey:        name.MatchKey,
			AuthorID:        req.AuthorID,
			ISBN:            req.ISBN,
			Genre:           req.Genre,
			Description:     req.Description,
			CoverImageURL:   req.CoverImageURL,
			PublicationYear: req.PublicationYear,
			CreatedBy:       createdBy,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.repo.Create(ctx, b); err != nil {
			return nil, err
		}
		inserted = b
		e := b.ToNamedEntity()
		return &e, nil
	}

	res, err := dedup.FindOrCreate(ctx, s.resolver, req.Title, s.repo.TitleSource(req.AuthorID), insert)
	s.recordOutcome(res, err)
	if err != nil {
		if errors.Is(err, dedup.ErrInvalidInput) {
			return nil, fmt.Errorf("%w: %v", model.ErrInvalidTitle, err)
		}
		return nil, err
	}

	if res.Created {
		log.Info().
			Str("book_id", inserted.ID.String()).
			Str("author_id", inserted.AuthorID.String()).
			Str("title", inserted.Title).
			Msg("Book created")
		if inserted.CoverImageURL != nil {
			s.enqueueCoverMirror(ctx, inserted.ID, *inserted.CoverImageURL)
		}
	}

	b, err := s.repo.FindByID(ctx, res.Entity.ID)
	if err != nil {
		return nil, err
	}

	return &model.CreateBookResponse{
		Book:    b.ToResponse(),
		Created: res.Created,
		Match:   string(res.Match),
		Score:   res.Score,
	}, nil
}

// ============================================
// READ
// ============================================

func (s *BookService) GetBook(ctx context.Context, id uuid.UUID) (*model.BookResponse, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := b.ToResponse()
	return &resp, nil
}

// Exists được review service dùng để kiểm tra book trước khi tạo review
func (s *BookService) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *BookService) ListBooks(ctx context.Context, limit, skip int) ([]model.BookResponse, int, error) {
	books, total, err := s.repo.List(ctx, limit, skip)
	if err != nil {
		return nil, 0, err
	}
	return model.ToResponses(books), total, nil
}

func (s *BookService) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, skip int) ([]model.BookResponse, error) {
	exists, err := s.repo.AuthorExists(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrAuthorNotFound
	}

	books, err := s.repo.ListByAuthor(ctx, authorID, limit, skip)
	if err != nil {
		return nil, err
	}
	return model.ToResponses(books), nil
}

func (s *BookService) AutocompleteTitles(ctx context.Context, q string, limit int) ([]string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, model.ErrInvalidTitle
	}
	return s.repo.AutocompleteTitles(ctx, q, limit)
}

func (s *BookService) SearchByTitle(ctx context.Context, q string, limit int) ([]model.BookResponse, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, model.ErrInvalidTitle
	}
	books, err := s.repo.SearchByTitle(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	return model.ToResponses(books), nil
}

func (s *BookService) SearchBooks(ctx context.Context, filter model.SearchFilter) ([]model.BookResponse, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Genre = strings.TrimSpace(filter.Genre)

	books, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	return model.ToResponses(books), nil
}

// ============================================
// UPDATE / DELETE
// ============================================

func (s *BookService) UpdateBook(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.BookResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	b := current.Book

	if req.AuthorID != nil && *req.AuthorID != b.AuthorID {
		exists, err := s.repo.AuthorExists(ctx, *req.AuthorID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, model.ErrAuthorNotFound
		}
		b.AuthorID = *req.AuthorID
	}

	// Đổi title thì tính lại title_key; unique(author_id, title_key) chặn trùng
	if req.Title != nil {
		b.Title = *req.Title
		b.TitleKey = dedup.MatchKey(*req.Title)
	}
	if req.ISBN != nil {
		b.ISBN = req.ISBN
	}
	if req.Genre != nil {
		b.Genre = req.Genre
	}
	if req.Description != nil {
		b.Description = req.Description
	}
	coverChanged := req.CoverImageURL != nil && !sameString(b.CoverImageURL, req.CoverImageURL)
	if coverChanged {
		b.CoverImageURL = req.CoverImageURL
	}
	if req.PublicationYear != nil {
		b.PublicationYear = req.PublicationYear
	}
	b.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, &b); err != nil {
		return nil, err
	}

	if coverChanged {
		s.enqueueCoverMirror(ctx, b.ID, *b.CoverImageURL)
	}

	return s.GetBook(ctx, id)
}

func (s *BookService) DeleteBook(ctx context.Context, id uuid.UUID) (*model.DeleteBookResponse, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	for _, hook := range s.onDelete {
		hook(ctx, id)
	}

	if s.storage != nil {
		prefix := fmt.Sprintf("covers/%s/", id)
		if err := s.storage.DeleteByPrefix(ctx, prefix); err != nil {
			log.Warn().Err(err).Str("prefix", prefix).Msg("Failed to delete mirrored covers")
		}
	}

	log.Info().Str("book_id", id.String()).Msg("Book deleted")
	return &model.DeleteBookResponse{ID: id, Deleted: true}, nil
}

// ============================================
// HELPERS
// ============================================

// enqueueCoverMirror best-effort: lỗi queue không làm fail request
func (s *BookService) enqueueCoverMirror(ctx context.Context, bookID uuid.UUID, sourceURL string) {
	if s.queue == nil {
		return
	}
	payload := shared.MirrorCoverPayload{BookID: bookID.String(), SourceURL: sourceURL}
	if err := s.queue.EnqueueJSON(ctx, shared.TypeMirrorBookCover, payload, queue.DefaultTaskOptions(shared.QueueLow)...); err != nil {
		log.Warn().Err(err).Str("book_id", bookID.String()).Msg("Failed to enqueue cover mirroring")
	}
}

func (s *BookService) recordOutcome(res dedup.Result, err error) {
	switch {
	case errors.Is(err, dedup.ErrInvalidInput):
		s.metrics.RecordResolution(entityName, "invalid")
	case err != nil:
		s.metrics.RecordResolution(entityName, "error")
	case res.Created:
		s.metrics.RecordResolution(entityName, "created")
	default:
		s.metrics.RecordResolution(entityName, string(res.Match))
	}
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
