package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf-backend/internal/domains/author"
	bookModel "bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/domains/review/model"
	"bookshelf-backend/internal/domains/review/repository"
	infraCache "bookshelf-backend/internal/infrastructure/cache"
	"bookshelf-backend/internal/infrastructure/messaging"
	"bookshelf-backend/pkg/cache"
)

// ========================================
// fakes
// ========================================

// memoryRepo giữ unique(book_id, user_id) giống Postgres
type memoryRepo struct {
	mu         sync.Mutex
	byID       map[uuid.UUID]*model.Review
	lookups    int
	storeErr   error
	raceWinner *model.Review // được chèn ngay trước Create kế tiếp
}

var _ repository.ReviewRepository = (*memoryRepo)(nil)

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: map[uuid.UUID]*model.Review{}}
}

func (m *memoryRepo) Create(_ context.Context, r *model.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.raceWinner != nil {
		m.byID[m.raceWinner.ID] = m.raceWinner
		m.raceWinner = nil
	}
	for _, other := range m.byID {
		if other.UserID == r.UserID && other.BookID == r.BookID {
			return model.ErrAlreadyReviewed
		}
	}
	cp := *r
	m.byID[r.ID] = &cp
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, model.ErrReviewNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memoryRepo) GetByUserAndBook(_ context.Context, userID, bookID uuid.UUID) (*model.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if m.storeErr != nil {
		return nil, m.storeErr
	}
	for _, r := range m.byID {
		if r.UserID == userID && r.BookID == bookID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, model.ErrReviewNotFound
}

func (m *memoryRepo) Update(_ context.Context, r *model.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[r.ID]; !ok {
		return model.ErrReviewNotFound
	}
	cp := *r
	m.byID[r.ID] = &cp
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return model.ErrReviewNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryRepo) IncrementHelpful(_ context.Context, id uuid.UUID) (*model.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, model.ErrReviewNotFound
	}
	r.HelpfulCount++
	cp := *r
	return &cp, nil
}

func (m *memoryRepo) ListByBook(_ context.Context, bookID uuid.UUID, sortBy string, limit, skip int) ([]model.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Review
	for _, r := range m.byID {
		if r.BookID == bookID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if sortBy == model.SortHelpful && out[i].HelpfulCount != out[j].HelpfulCount {
			return out[i].HelpfulCount > out[j].HelpfulCount
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if skip >= len(out) {
		return []model.Review{}, nil
	}
	out = out[skip:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryRepo) GetRatingStats(_ context.Context, bookID uuid.UUID) (model.RatingStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s model.RatingStats
	for _, r := range m.byID {
		if r.BookID == bookID {
			s.Sum += int64(r.Rating)
			s.Count++
		}
	}
	return s, nil
}

type stubCatalog struct {
	books      map[uuid.UUID]bool
	existsErr  error
	createReqs []bookModel.CreateBookRequest
}

func (c *stubCatalog) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	if c.existsErr != nil {
		return false, c.existsErr
	}
	return c.books[id], nil
}

func (c *stubCatalog) CreateBook(_ context.Context, req bookModel.CreateBookRequest, _ *uuid.UUID) (*bookModel.CreateBookResponse, error) {
	c.createReqs = append(c.createReqs, req)
	id := uuid.New()
	c.books[id] = true
	return &bookModel.CreateBookResponse{Book: bookModel.BookResponse{ID: id, Title: req.Title}, Created: true}, nil
}

type stubAuthors struct {
	names []string
}

func (a *stubAuthors) FindOrCreate(_ context.Context, raw string, _ *uuid.UUID) (*author.Author, bool, error) {
	a.names = append(a.names, raw)
	return &author.Author{ID: uuid.New(), Name: raw}, true, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _, _ string, event messaging.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

type fixture struct {
	svc     *reviewService
	repo    *memoryRepo
	catalog *stubCatalog
	authors *stubAuthors
	pub     *recordingPublisher
	mr      *miniredis.Miniredis
	bookID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	existence := cache.NewExistenceCache(infraCache.NewRedisCache(client), cache.ExistenceOptions{
		PresentSuffix: model.ExistencePresentSuffix,
		AbsentSuffix:  model.ExistenceAbsentSuffix,
		PresentTTL:    time.Hour,
		AbsentTTL:     5 * time.Minute,
	})

	bookID := uuid.New()
	f := &fixture{
		repo:    newMemoryRepo(),
		catalog: &stubCatalog{books: map[uuid.UUID]bool{bookID: true}},
		authors: &stubAuthors{},
		pub:     &recordingPublisher{},
		mr:      mr,
		bookID:  bookID,
	}
	f.svc = NewReviewService(f.repo, f.catalog, f.authors, existence, f.pub, "reviews-events").(*reviewService)
	return f
}

func (f *fixture) key(userID, bookID uuid.UUID) string {
	return model.ExistenceKey(userID, bookID)
}

func validReq(bookID uuid.UUID) model.CreateReviewRequest {
	return model.CreateReviewRequest{BookID: bookID, Rating: 4, Content: "Could not put it down", Tags: []string{"Thriller"}}
}

// ========================================
// tests
// ========================================

func TestCreateReview_CachesPresenceAndPublishes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	resp, err := f.svc.CreateReview(ctx, userID, validReq(f.bookID))
	require.NoError(t, err)
	assert.Equal(t, []string{"thriller"}, resp.Tags)
	assert.True(t, f.mr.Exists(f.key(userID, f.bookID)+":review"))
	assert.False(t, f.mr.Exists(f.key(userID, f.bookID)+":no_review"))
	assert.Equal(t, []string{messaging.ReviewCreated}, f.pub.types())

	var data messaging.ReviewEventData
	require.NoError(t, f.pub.events[0].Decode(&data))
	assert.Equal(t, resp.ID.String(), data.ReviewID)
	assert.Equal(t, 4, data.Rating)
}

func TestCreateReview_DuplicateAnsweredFromCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := f.svc.CreateReview(ctx, userID, validReq(f.bookID))
	require.NoError(t, err)
	lookups := f.repo.lookups

	_, err = f.svc.CreateReview(ctx, userID, validReq(f.bookID))
	require.ErrorIs(t, err, model.ErrAlreadyReviewed)

	var revErr *model.ReviewError
	require.True(t, errors.As(err, &revErr))
	assert.Equal(t, first.ID, revErr.ReviewID)
	assert.Equal(t, lookups, f.repo.lookups, "second check must not reach the store")
}

func TestCreateReview_BookChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateReview(ctx, uuid.New(), validReq(uuid.New()))
	assert.ErrorIs(t, err, model.ErrBookNotFound)

	f.catalog.existsErr = errors.New("dial tcp: connection refused")
	_, err = f.svc.CreateReview(ctx, uuid.New(), validReq(f.bookID))
	assert.ErrorIs(t, err, model.ErrCatalogUnavailable)
	assert.NotErrorIs(t, err, model.ErrBookNotFound)
}

func TestCreateReview_LostRaceReturnsConflictWithWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	winner := &model.Review{ID: uuid.New(), BookID: f.bookID, UserID: userID, Rating: 5, Content: "first"}
	f.repo.raceWinner = winner

	_, err := f.svc.CreateReview(ctx, userID, validReq(f.bookID))
	require.ErrorIs(t, err, model.ErrAlreadyReviewed)

	var revErr *model.ReviewError
	require.True(t, errors.As(err, &revErr))
	assert.Equal(t, winner.ID, revErr.ReviewID)
	assert.True(t, f.mr.Exists(f.key(userID, f.bookID)+":review"))
	assert.Empty(t, f.pub.types())
}

func TestCreateReview_StoreFailureIsNotAbsence(t *testing.T) {
	f := newFixture(t)
	f.repo.storeErr = errors.New("connection reset")

	_, err := f.svc.CreateReview(context.Background(), uuid.New(), validReq(f.bookID))
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrAlreadyReviewed)
	assert.Zero(t, f.repo.count())
}

func TestCreateReview_CacheDownFallsBackToStore(t *testing.T) {
	f := newFixture(t)
	f.mr.Close()

	resp, err := f.svc.CreateReview(context.Background(), uuid.New(), validReq(f.bookID))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, resp.ID)
}

func TestHasReviewed_NegativeThenDeleteInvalidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	res, err := f.svc.HasReviewed(ctx, userID, f.bookID)
	require.NoError(t, err)
	assert.False(t, res.Reviewed)
	assert.True(t, f.mr.Exists(f.key(userID, f.bookID)+":no_review"))

	created, err := f.svc.CreateReview(ctx, userID, validReq(f.bookID))
	require.NoError(t, err)
	assert.False(t, f.mr.Exists(f.key(userID, f.bookID)+":no_review"))

	res, err = f.svc.HasReviewed(ctx, userID, f.bookID)
	require.NoError(t, err)
	assert.True(t, res.Reviewed)
	assert.Equal(t, created.ID, *res.ReviewID)

	require.NoError(t, f.svc.DeleteReview(ctx, userID, created.ID))
	assert.False(t, f.mr.Exists(f.key(userID, f.bookID)+":review"))

	// Sau khi xoá, user được review lại ngay
	_, err = f.svc.CreateReview(ctx, userID, validReq(f.bookID))
	assert.NoError(t, err)
	assert.Equal(t, []string{messaging.ReviewCreated, messaging.ReviewDeleted, messaging.ReviewCreated}, f.pub.types())
}

func TestUpdateAndDelete_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := f.svc.CreateReview(ctx, owner, validReq(f.bookID))
	require.NoError(t, err)

	rating := 2
	_, err = f.svc.UpdateReview(ctx, uuid.New(), created.ID, model.UpdateReviewRequest{Rating: &rating})
	assert.ErrorIs(t, err, model.ErrForbidden)

	err = f.svc.DeleteReview(ctx, uuid.New(), created.ID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	updated, err := f.svc.UpdateReview(ctx, owner, created.ID, model.UpdateReviewRequest{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rating)
	assert.Equal(t, created.Content, updated.Content)

	_, err = f.svc.UpdateReview(ctx, owner, uuid.New(), model.UpdateReviewRequest{Rating: &rating})
	assert.ErrorIs(t, err, model.ErrReviewNotFound)
}

func TestMarkHelpfulAndListSortedByHelpful(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.CreateReview(ctx, uuid.New(), validReq(f.bookID))
	require.NoError(t, err)
	b, err := f.svc.CreateReview(ctx, uuid.New(), validReq(f.bookID))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = f.svc.MarkHelpful(ctx, a.ID)
		require.NoError(t, err)
	}

	list, err := f.svc.ListBookReviews(ctx, f.bookID, "helpful", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, 2, list[0].HelpfulCount)
	assert.Equal(t, b.ID, list[1].ID)

	_, err = f.svc.ListBookReviews(ctx, uuid.New(), "recent", 10, 0)
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestGetBookRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.svc.GetBookRating(ctx, f.bookID)
	require.NoError(t, err)
	assert.Zero(t, empty.AverageRating)
	assert.Zero(t, empty.ReviewCount)

	for _, rating := range []int{5, 4, 4} {
		req := validReq(f.bookID)
		req.Rating = rating
		_, err := f.svc.CreateReview(ctx, uuid.New(), req)
		require.NoError(t, err)
	}

	rating, err := f.svc.GetBookRating(ctx, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, 4.33, rating.AverageRating)
	assert.Equal(t, int64(3), rating.ReviewCount)
}

func TestCreateReviewWithBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	title := "The Hunt for Red October"
	name := "Clancy, Tom"
	resp, err := f.svc.CreateReviewWithBook(ctx, userID, model.CreateReviewWithBookRequest{
		BookTitle:  &title,
		AuthorName: &name,
		Rating:     5,
		Content:    "Classic",
	})
	require.NoError(t, err)
	assert.True(t, resp.BookCreated)
	assert.True(t, resp.AuthorCreated)
	require.NotNil(t, resp.AuthorID)
	assert.Equal(t, []string{name}, f.authors.names)
	require.Len(t, f.catalog.createReqs, 1)
	assert.Equal(t, *resp.AuthorID, f.catalog.createReqs[0].AuthorID)
	assert.Equal(t, resp.BookID, resp.Review.BookID)

	// book_id có sẵn: không đụng tới author/book
	existing, err := f.svc.CreateReviewWithBook(ctx, uuid.New(), model.CreateReviewWithBookRequest{
		BookID:  &f.bookID,
		Rating:  3,
		Content: "Fine",
	})
	require.NoError(t, err)
	assert.False(t, existing.BookCreated)
	assert.Nil(t, existing.AuthorID)
	assert.Len(t, f.catalog.createReqs, 1)

	_, err = f.svc.CreateReviewWithBook(ctx, userID, model.CreateReviewWithBookRequest{Rating: 5, Content: "x"})
	assert.ErrorIs(t, err, model.ErrInvalidBookReference)
}

func TestForgetBook_ClearsExistenceAfterCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reader, other := uuid.New(), uuid.New()

	created, err := f.svc.CreateReview(ctx, reader, validReq(f.bookID))
	require.NoError(t, err)
	res, err := f.svc.HasReviewed(ctx, reader, f.bookID)
	require.NoError(t, err)
	require.True(t, res.Reviewed)
	require.Equal(t, created.ID, *res.ReviewID)
	res, err = f.svc.HasReviewed(ctx, other, f.bookID)
	require.NoError(t, err)
	require.False(t, res.Reviewed)

	otherBook := uuid.New()
	f.catalog.books[otherBook] = true
	kept, err := f.svc.CreateReview(ctx, reader, validReq(otherBook))
	require.NoError(t, err)

	// ON DELETE CASCADE: review biến mất khỏi DB cùng book
	f.repo.dropBook(f.bookID)
	delete(f.catalog.books, f.bookID)
	f.svc.ForgetBook(ctx, f.bookID)

	assert.False(t, f.mr.Exists(f.key(reader, f.bookID)+":review"))
	assert.False(t, f.mr.Exists(f.key(other, f.bookID)+":no_review"))

	res, err = f.svc.HasReviewed(ctx, reader, f.bookID)
	require.NoError(t, err)
	assert.False(t, res.Reviewed)
	assert.Nil(t, res.ReviewID)

	res, err = f.svc.HasReviewed(ctx, reader, otherBook)
	require.NoError(t, err)
	assert.True(t, res.Reviewed)
	assert.Equal(t, kept.ID, *res.ReviewID)
}

func TestCreateReviewWithBook_RejectedReviewCreatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	title := "Dune"
	name := "Frank Herbert"
	tests := []struct {
		name string
		req  model.CreateReviewWithBookRequest
	}{
		{"blank content", model.CreateReviewWithBookRequest{BookTitle: &title, AuthorName: &name, Rating: 5, Content: "   "}},
		{"oversized tag", model.CreateReviewWithBookRequest{BookTitle: &title, AuthorName: &name, Rating: 5, Content: "ok", Tags: []string{strings.Repeat("t", 500)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateReviewWithBook(ctx, uuid.New(), tt.req)
			var verrs validation.Errors
			require.True(t, errors.As(err, &verrs), "want a validation error, got %v", err)
		})
	}

	assert.Empty(t, f.authors.names)
	assert.Empty(t, f.catalog.createReqs)
	assert.Zero(t, f.repo.count())
}

func TestUpdateReview_BlankContentRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := f.svc.CreateReview(ctx, owner, validReq(f.bookID))
	require.NoError(t, err)

	blank := "   "
	_, err = f.svc.UpdateReview(ctx, owner, created.ID, model.UpdateReviewRequest{Content: &blank})
	require.Error(t, err)

	got, err := f.svc.GetReview(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Content, got.Content)
}

func (m *memoryRepo) dropBook(bookID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.byID {
		if r.BookID == bookID {
			delete(m.byID, id)
		}
	}
}

func (m *memoryRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}
