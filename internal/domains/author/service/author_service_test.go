package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf-backend/internal/dedup"
	"bookshelf-backend/internal/domains/author"
	infraCache "bookshelf-backend/internal/infrastructure/cache"
	"bookshelf-backend/internal/infrastructure/metrics"
)

// memoryRepo giữ unique(name_key) giống constraint trong Postgres
type memoryRepo struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*author.Author
	finds    int
	storeErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: map[uuid.UUID]*author.Author{}}
}

func (m *memoryRepo) FindByMatchKey(_ context.Context, key string) (*dedup.NamedEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return nil, m.storeErr
	}
	for _, a := range m.byID {
		if a.NameKey == key {
			e := a.ToNamedEntity()
			return &e, nil
		}
	}
	return nil, dedup.ErrNotFound
}

func (m *memoryRepo) ListCandidates(_ context.Context) ([]dedup.NamedEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return nil, m.storeErr
	}
	out := make([]dedup.NamedEntity, 0, len(m.byID))
	for _, a := range m.byID {
		out = append(out, a.ToNamedEntity())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchKey < out[j].MatchKey })
	return out, nil
}

func (m *memoryRepo) Create(_ context.Context, a *author.Author) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.NameKey == a.NameKey {
			return author.ErrDuplicateName
		}
	}
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memoryRepo) FindByID(_ context.Context, id uuid.UUID) (*author.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	if m.storeErr != nil {
		return nil, m.storeErr
	}
	a, ok := m.byID[id]
	if !ok {
		return nil, author.ErrAuthorNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memoryRepo) Search(_ context.Context, _ string, _ int) ([]author.Author, error) {
	return nil, nil
}

func (m *memoryRepo) List(_ context.Context, _, _ int) ([]author.Author, int, error) {
	return nil, 0, nil
}

func (m *memoryRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

func newService(repo *memoryRepo, m *metrics.Metrics) author.Service {
	resolver := dedup.NewResolver(dedup.Options{Fuzzy: true, Threshold: 0.6})
	return NewAuthorService(repo, resolver, nil, time.Minute, m)
}

func TestCreate_NewThenExactThenFuzzy(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newService(repo, nil)
	userID := uuid.New()

	first, err := svc.Create(ctx, author.CreateAuthorRequest{Name: "  tom   clancy "}, &userID)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "Tom Clancy", first.Author.Name)

	second, err := svc.Create(ctx, author.CreateAuthorRequest{Name: "Clancy, Tom"}, &userID)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, "exact", second.Match)
	assert.Equal(t, first.Author.ID, second.Author.ID)

	third, err := svc.Create(ctx, author.CreateAuthorRequest{Name: "Tom Clancey"}, &userID)
	require.NoError(t, err)
	assert.False(t, third.Created)
	assert.Equal(t, "fuzzy", third.Match)
	assert.Equal(t, first.Author.ID, third.Author.ID)
	assert.Greater(t, third.Score, 0.6)

	assert.Equal(t, 1, repo.count())
}

func TestCreate_StoreFailureIsNotAMiss(t *testing.T) {
	repo := newMemoryRepo()
	repo.storeErr = errors.New("connection refused")
	svc := newService(repo, nil)

	_, err := svc.Create(context.Background(), author.CreateAuthorRequest{Name: "Tom Clancy"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, dedup.ErrStoreUnavailable)
	assert.Equal(t, 0, repo.count())
}

func TestFindOrCreate_ConcurrentVariantsCreateOnce(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo, nil)

	names := []string{"Tom Clancy", "Clancy, Tom", "TOM CLANCY", "clancy, tom"}
	ids := make([]uuid.UUID, len(names)*4)

	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, _, err := svc.FindOrCreate(context.Background(), names[i%len(names)], nil)
			if assert.NoError(t, err) {
				ids[i] = a.ID
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, repo.count())
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestFindOrCreate_EmptyNameIsInvalid(t *testing.T) {
	svc := newService(newMemoryRepo(), nil)

	_, _, err := svc.FindOrCreate(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, author.ErrInvalidName)
	assert.ErrorIs(t, err, dedup.ErrInvalidInput)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newService(repo, nil)

	_, err := svc.Resolve(ctx, "Stephen King")
	assert.ErrorIs(t, err, author.ErrAuthorNotFound)

	created, _, err := svc.FindOrCreate(ctx, "Stephen King", nil)
	require.NoError(t, err)

	res, err := svc.Resolve(ctx, "King, Stephen")
	require.NoError(t, err)
	assert.Equal(t, "exact", res.Match)
	assert.Equal(t, "Stephen King", res.DisplayForm)
	assert.Equal(t, created.ID, res.Author.ID)
	assert.Equal(t, 1, repo.count())
}

func TestGetByID_ReadsThroughCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMemoryRepo()
	resolver := dedup.NewResolver(dedup.Options{Fuzzy: true})
	svc := NewAuthorService(repo, resolver, infraCache.NewRedisCache(client), time.Hour, nil)

	a, _, err := svc.FindOrCreate(ctx, "Ursula K. Le Guin", nil)
	require.NoError(t, err)
	repo.finds = 0

	got, err := svc.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Name, got.Name)
	assert.True(t, mr.Exists("author:"+a.ID.String()))

	got, err = svc.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, 1, repo.finds)

	// Redis chết thì vẫn đọc từ store
	mr.Close()
	got, err = svc.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, 2, repo.finds)
}

func TestAuditDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	now := time.Now()
	for _, n := range []string{"Tom Clancy", "Tom Clancey", "Margaret Atwood"} {
		c := dedup.Canonicalize(n)
		require.NoError(t, repo.Create(ctx, &author.Author{ID: uuid.New(), Name: c.DisplayForm, NameKey: c.MatchKey, CreatedAt: now}))
	}

	m := metrics.New(prometheus.NewRegistry())
	report, err := newService(repo, m).AuditDuplicates(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Checked)
	require.Len(t, report.Duplicates, 1)
	pair := report.Duplicates[0]
	assert.ElementsMatch(t, []string{"tom clancy", "tom clancey"}, []string{pair.First.MatchKey, pair.Second.MatchKey})
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DuplicateAuthors))
}
