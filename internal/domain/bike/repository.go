package bike

import (
	"context"

	"github.com/google/uuid"
)

// BikeRepository defines the persistence contract for bike aggregates.
type BikeRepository interface {
	// FindByID retrieves a bike by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Bike, error)

	// ListAll retrieves bikes with pagination, ordered by name.
	ListAll(ctx context.Context, page, limit int) ([]*Bike, int64, error)

	// ListByStatus retrieves bikes in the given status with pagination.
	ListByStatus(ctx context.Context, status BikeStatus, page, limit int) ([]*Bike, int64, error)

	// CountByStatus returns bike counts grouped by status.
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new bike.
	Save(ctx context.Context, bike *Bike) error

	// Update persists changes to an existing bike with optimistic locking.
	Update(ctx context.Context, bike *Bike) error

	// Delete removes a bike from the fleet.
	Delete(ctx context.Context, id uuid.UUID) error
}
