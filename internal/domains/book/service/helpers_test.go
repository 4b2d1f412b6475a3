package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"bookshelf-backend/internal/dedup"
	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/domains/book/repository"
)

// memoryRepo mô phỏng các unique constraint của bảng books
type memoryRepo struct {
	mu       sync.Mutex
	authors  map[uuid.UUID]string
	books    map[uuid.UUID]*model.Book
	storeErr error
}

var _ repository.RepositoryInterface = (*memoryRepo)(nil)

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{authors: map[uuid.UUID]string{}, books: map[uuid.UUID]*model.Book{}}
}

func (m *memoryRepo) addAuthor(name string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.authors[id] = name
	return id
}

type memoryTitles struct {
	repo     *memoryRepo
	authorID uuid.UUID
}

func (m *memoryRepo) TitleSource(authorID uuid.UUID) dedup.Source {
	return &memoryTitles{repo: m, authorID: authorID}
}

func (t *memoryTitles) FindByMatchKey(_ context.Context, key string) (*dedup.NamedEntity, error) {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	if t.repo.storeErr != nil {
		return nil, t.repo.storeErr
	}
	for _, b := range t.repo.books {
		if b.AuthorID == t.authorID && b.TitleKey == key {
			e := b.ToNamedEntity()
			return &e, nil
		}
	}
	return nil, dedup.ErrNotFound
}

func (t *memoryTitles) ListCandidates(_ context.Context) ([]dedup.NamedEntity, error) {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	var out []dedup.NamedEntity
	for _, b := range t.repo.books {
		if b.AuthorID == t.authorID {
			out = append(out, b.ToNamedEntity())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchKey < out[j].MatchKey })
	return out, nil
}

func (m *memoryRepo) checkUnique(b *model.Book) error {
	if _, ok := m.authors[b.AuthorID]; !ok {
		return model.ErrAuthorNotFound
	}
	for _, other := range m.books {
		if other.ID == b.ID {
			continue
		}
		if b.ISBN != nil && other.ISBN != nil && *b.ISBN == *other.ISBN {
			return model.ErrDuplicateISBN
		}
		if other.AuthorID == b.AuthorID && other.TitleKey == b.TitleKey {
			return model.ErrDuplicateTitle
		}
	}
	return nil
}

func (m *memoryRepo) Create(_ context.Context, b *model.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkUnique(b); err != nil {
		return err
	}
	cp := *b
	m.books[b.ID] = &cp
	return nil
}

func (m *memoryRepo) Update(_ context.Context, b *model.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[b.ID]; !ok {
		return model.ErrBookNotFound
	}
	if err := m.checkUnique(b); err != nil {
		return err
	}
	cp := *b
	m.books[b.ID] = &cp
	return nil
}

func (m *memoryRepo) UpdateCoverURL(_ context.Context, id uuid.UUID, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return model.ErrBookNotFound
	}
	b.CoverImageURL = &url
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return model.ErrBookNotFound
	}
	delete(m.books, id)
	return nil
}

func (m *memoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.BookWithAuthor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return nil, m.storeErr
	}
	b, ok := m.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	return &model.BookWithAuthor{Book: *b, AuthorName: m.authors[b.AuthorID]}, nil
}

func (m *memoryRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.books[id]
	return ok, m.storeErr
}

func (m *memoryRepo) AuthorExists(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return false, m.storeErr
	}
	_, ok := m.authors[id]
	return ok, nil
}

func (m *memoryRepo) AutocompleteTitles(_ context.Context, q string, _ int) ([]string, error) {
	var out []string
	for _, b := range m.all() {
		if strings.Contains(strings.ToLower(b.Title), strings.ToLower(q)) {
			out = append(out, b.Title)
		}
	}
	return out, nil
}

func (m *memoryRepo) SearchByTitle(_ context.Context, q string, _ int) ([]model.BookWithAuthor, error) {
	return m.Search(context.Background(), model.SearchFilter{Query: q})
}

func (m *memoryRepo) Search(_ context.Context, f model.SearchFilter) ([]model.BookWithAuthor, error) {
	var out []model.BookWithAuthor
	for _, b := range m.all() {
		if f.Query != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(f.Query)) {
			continue
		}
		if f.AuthorID != nil && b.AuthorID != *f.AuthorID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *memoryRepo) List(_ context.Context, _, _ int) ([]model.BookWithAuthor, int, error) {
	all := m.all()
	return all, len(all), nil
}

func (m *memoryRepo) ListByAuthor(_ context.Context, authorID uuid.UUID, _, _ int) ([]model.BookWithAuthor, error) {
	return m.Search(context.Background(), model.SearchFilter{AuthorID: &authorID})
}

func (m *memoryRepo) all() []model.BookWithAuthor {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.BookWithAuthor, 0, len(m.books))
	for _, b := range m.books {
		out = append(out, model.BookWithAuthor{Book: *b, AuthorName: m.authors[b.AuthorID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

func (m *memoryRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.books)
}

// recordingQueue ghi lại các task đã enqueue
type recordingQueue struct {
	mu    sync.Mutex
	tasks []string
	err   error
}

func (q *recordingQueue) EnqueueJSON(_ context.Context, taskType string, _ any, _ ...asynq.Option) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, taskType)
	return q.err
}

// memoryStore implements storage.ObjectStore
type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (s *memoryStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.objects[key] = data
	return "http://minio.local/bookshelf/" + key, nil
}

func (s *memoryStore) DeleteByPrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, prefix)
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			delete(s.objects, k)
		}
	}
	return nil
}

func (s *memoryStore) HealthCheck(context.Context) error { return s.err }
