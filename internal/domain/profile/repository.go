package profile

import (
	"context"

	"github.com/google/uuid"
)

// ProfileRepository defines persistence operations for user profiles.
type ProfileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	ListAll(ctx context.Context, page, limit int) ([]*Profile, int64, error)
	Save(ctx context.Context, profile *Profile) error
}
