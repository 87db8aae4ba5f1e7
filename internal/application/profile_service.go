package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecoride-campus/service-rental/internal/domain"
	"github.com/ecoride-campus/service-rental/internal/domain/profile"
)

// ProfileDTO is the response representation of a user profile.
type ProfileDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileService exposes user-profile visibility for admins and
// self-lookup for any actor.
type ProfileService struct {
	profiles profile.ProfileRepository
	logger   *zap.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(profiles profile.ProfileRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, logger: logger}
}

// GetProfile retrieves the acting user's own profile.
func (s *ProfileService) GetProfile(ctx context.Context, actor profile.Actor) (*ProfileDTO, error) {
	p, err := s.profiles.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	result := toProfileDTO(p)
	return &result, nil
}

// ListUsers returns a paginated list of all profiles (admin).
func (s *ProfileService) ListUsers(ctx context.Context, actor profile.Actor, page, limit int) (*domain.PaginatedResult[ProfileDTO], error) {
	if err := authorize(OpListUsers, actor); err != nil {
		return nil, err
	}

	profiles, total, err := s.profiles.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]ProfileDTO, len(profiles))
	for i, p := range profiles {
		dtos[i] = toProfileDTO(p)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

func toProfileDTO(p *profile.Profile) ProfileDTO {
	return ProfileDTO{
		ID:        p.ID(),
		Email:     p.Email(),
		FullName:  p.FullName(),
		Role:      string(p.Role()),
		CreatedAt: p.CreatedAt(),
	}
}
