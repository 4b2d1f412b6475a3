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
	"bookshelf-backend/internal/domains/author"
	"bookshelf-backend/internal/infrastructure/metrics"
	"bookshelf-backend/pkg/cache"
)

const entityName = "author"

type authorService struct {
	repo     author.Repository
	resolver *dedup.Resolver
	cache    cache.Cache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewAuthorService: cache và metrics có thể nil
func NewAuthorService(
	repo author.Repository,
	resolver *dedup.Resolver,
	c cache.Cache,
	cacheTTL time.Duration,
	m *metrics.Metrics,
) author.Service {
	return &authorService{
		repo:     repo,
		resolver: resolver,
		cache:    c,
		cacheTTL: cacheTTL,
		metrics:  m,
		now:      time.Now,
	}
}

// ========================================
// DEDUP
// ========================================

func (s *authorService) Create(ctx context.Context, req author.CreateAuthorRequest, createdBy *uuid.UUID) (*author.CreateAuthorResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, res, err := s.findOrCreate(ctx, req.Name, req.Bio, createdBy)
	if err != nil {
		return nil, err
	}

	return &author.CreateAuthorResponse{
		Author:  a.ToResponse(),
		Created: res.Created,
		Match:   string(res.Match),
		Score:   res.Score,
	}, nil
}

func (s *authorService) FindOrCreate(ctx context.Context, rawName string, createdBy *uuid.UUID) (*author.Author, bool, error) {
	a, res, err := s.findOrCreate(ctx, rawName, nil, createdBy)
	if err != nil {
		return nil, false, err
	}
	return a, res.Created, nil
}

func (s *authorService) findOrCreate(ctx context.Context, rawName string, bio *string, createdBy *uuid.UUID) (*author.Author, dedup.Result, error) {
	var inserted *author.Author

	insert := func(ctx context.Context, name dedup.CanonicalName) (*dedup.NamedEntity, error) {
		now := s.now().UTC()
		a := &author.Author{
			ID:        uuid.New(),
			Name:      name.DisplayForm,
			NameKey:   name.MatchKey,
			Bio:       bio,
			CreatedBy: createdBy,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Create(ctx, a); err != nil {
			return nil, err
		}
		inserted = a
		e := a.ToNamedEntity()
		return &e, nil
	}

	res, err := dedup.FindOrCreate(ctx, s.resolver, rawName, s.repo, insert)
	if err != nil {
		s.recordOutcome(res, err)
		return nil, res, mapDedupError(err)
	}
	s.recordOutcome(res, nil)

	if res.Created {
		log.Info().
			Str("author_id", inserted.ID.String()).
			Str("name", inserted.Name).
			Msg("Author created")
		return inserted, res, nil
	}

	log.Debug().
		Str("query", rawName).
		Str("author_id", res.Entity.ID.String()).
		Str("match", string(res.Match)).
		Float64("score", res.Score).
		Msg("Author resolved to existing entry")

	a, err := s.repo.FindByID(ctx, res.Entity.ID)
	if err != nil {
		return nil, res, err
	}
	return a, res, nil
}

// Resolve chạy resolver mà không tạo gì
func (s *authorService) Resolve(ctx context.Context, rawName string) (*author.ResolveResponse, error) {
	res, err := s.resolver.Resolve(ctx, rawName, s.repo)
	if err != nil {
		return nil, mapDedupError(err)
	}
	if !res.Found() {
		return nil, author.ErrAuthorNotFound
	}

	a, err := s.GetByID(ctx, res.Entity.ID)
	if err != nil {
		return nil, err
	}

	return &author.ResolveResponse{
		Query:       rawName,
		DisplayForm: res.Name.DisplayForm,
		MatchKey:    res.Name.MatchKey,
		Match:       string(res.Match),
		Score:       res.Score,
		Author:      a.ToResponse(),
	}, nil
}

// ========================================
// READ
// ========================================

func (s *authorService) GetByID(ctx context.Context, id uuid.UUID) (*author.Author, error) {
	key := cacheKey(id)

	if s.cache != nil {
		var cached author.Author
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Author cache read failed")
		} else if hit {
			return &cached, nil
		}
	}

	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, a, s.cacheTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Author cache write failed")
		}
	}
	return a, nil
}

func (s *authorService) List(ctx context.Context, limit, skip int) ([]author.Author, int, error) {
	return s.repo.List(ctx, limit, skip)
}

func (s *authorService) Search(ctx context.Context, query string, limit int) ([]author.Author, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, author.ErrInvalidName
	}
	return s.repo.Search(ctx, query, limit)
}

// ========================================
// AUDIT
// ========================================

// AuditDuplicates so từng cặp author (O(n^2)) và trả về các cặp vượt threshold
func (s *authorService) AuditDuplicates(ctx context.Context) (*author.AuditReport, error) {
	all, err := s.repo.ListCandidates(ctx)
	if err != nil {
		return nil, &dedup.StoreError{Op: "list candidates", Err: err}
	}

	threshold := s.resolver.Threshold()
	report := &author.AuditReport{
		Checked:    len(all),
		Threshold:  threshold,
		Duplicates: make([]author.DuplicatePair, 0),
	}

	for i := 0; i < len(all); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := i + 1; j < len(all); j++ {
			score := dedup.Similarity(all[i].MatchKey, all[j].MatchKey)
			if score > threshold {
				report.Duplicates = append(report.Duplicates, author.DuplicatePair{
					First:  all[i],
					Second: all[j],
					Score:  score,
				})
			}
		}
	}

	s.metrics.SetDuplicateAuthors(len(report.Duplicates))
	return report, nil
}

// ========================================
// HELPERS
// ========================================

func cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("author:%s", id)
}

func (s *authorService) recordOutcome(res dedup.Result, err error) {
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

func mapDedupError(err error) error {
	if errors.Is(err, dedup.ErrInvalidInput) {
		return fmt.Errorf("%w: %v", author.ErrInvalidName, err)
	}
	return err
}
