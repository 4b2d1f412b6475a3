package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/post"
	"bookshelf-backend/internal/infrastructure/messaging"
)

type postService struct {
	repo      post.Repository
	publisher messaging.Publisher
	topic     string
	now       func() time.Time
}

func NewPostService(repo post.Repository, publisher messaging.Publisher, topic string) post.Service {
	return &postService{
		repo:      repo,
		publisher: publisher,
		topic:     topic,
		now:       time.Now,
	}
}

// ========================================
// WRITE
// ========================================

func (s *postService) Create(ctx context.Context, userID uuid.UUID, req post.CreatePostRequest) (*post.PostResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &post.Post{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     req.Title,
		Content:   req.Content,
		Tags:      req.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	// Feed consumer dựng activity item từ event này
	messaging.PublishBestEffort(ctx, s.publisher, s.topic, p.ID.String(), messaging.PostCreated, messaging.PostEventData{
		PostID:  p.ID.String(),
		UserID:  userID.String(),
		Title:   p.Title,
		Content: p.Content,
	})

	log.Info().Str("post_id", p.ID.String()).Str("user_id", userID.String()).Msg("Post created")
	resp := p.ToResponse()
	return &resp, nil
}

func (s *postService) Update(ctx context.Context, userID, id uuid.UUID, req post.UpdatePostRequest) (*post.PostResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.ownedPost(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	req.Apply(p)
	p.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	messaging.PublishBestEffort(ctx, s.publisher, s.topic, p.ID.String(), messaging.PostUpdated, messaging.PostEventData{
		PostID: p.ID.String(),
		UserID: userID.String(),
	})

	resp := p.ToResponse()
	return &resp, nil
}

func (s *postService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	p, err := s.ownedPost(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return err
	}

	messaging.PublishBestEffort(ctx, s.publisher, s.topic, p.ID.String(), messaging.PostDeleted, messaging.PostEventData{
		PostID: p.ID.String(),
		UserID: userID.String(),
	})
	return nil
}

// ========================================
// READ
// ========================================

func (s *postService) Get(ctx context.Context, id uuid.UUID) (*post.PostResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := p.ToResponse()
	return &resp, nil
}

func (s *postService) List(ctx context.Context, filter post.ListFilter) ([]post.PostResponse, error) {
	posts, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]post.PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, posts[i].ToResponse())
	}
	return out, nil
}

func (s *postService) ownedPost(ctx context.Context, userID, id uuid.UUID) (*post.Post, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(userID) {
		return nil, fmt.Errorf("post %s: %w", id, post.ErrForbidden)
	}
	return p, nil
}
