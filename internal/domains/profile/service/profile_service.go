package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/profile"
)

type profileService struct {
	repo profile.Repository
	now  func() time.Time
}

func NewProfileService(repo profile.Repository) profile.Service {
	return &profileService{repo: repo, now: time.Now}
}

// Create: 400 nếu user đã có profile. Check trước cho message rõ ràng,
// unique(user_id) chặn trường hợp race.
func (s *profileService) Create(ctx context.Context, userID uuid.UUID, req profile.ProfileRequest) (*profile.ProfileResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByUserID(ctx, userID); err == nil {
		return nil, profile.ErrProfileExists
	} else if !errors.Is(err, profile.ErrProfileNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	p := &profile.Profile{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	req.Apply(p)

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	log.Info().Str("user_id", userID.String()).Msg("Profile created")
	resp := p.ToResponse()
	return &resp, nil
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*profile.ProfileResponse, error) {
	p, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := p.ToResponse()
	return &resp, nil
}

func (s *profileService) Update(ctx context.Context, userID uuid.UUID, req profile.ProfileRequest) (*profile.ProfileResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	req.Apply(p)
	p.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	resp := p.ToResponse()
	return &resp, nil
}

func (s *profileService) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.repo.DeleteByUserID(ctx, userID)
}
