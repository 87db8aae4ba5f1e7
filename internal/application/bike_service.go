package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecoride-campus/service-rental/internal/domain"
	bikeDomain "github.com/ecoride-campus/service-rental/internal/domain/bike"
	"github.com/ecoride-campus/service-rental/internal/domain/profile"
)

// BikeDTO is the response representation of a bike.
type BikeDTO struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	ImageURL          string    `json:"image_url,omitempty"`
	Station           string    `json:"station,omitempty"`
	PricePerHourCents int64     `json:"price_per_hour_cents"`
	Status            string    `json:"status"`
	Version           int64     `json:"version"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// UpsertBikeRequest holds the data for creating or editing a bike.
type UpsertBikeRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	ImageURL          string `json:"image_url"`
	Station           string `json:"station"`
	PricePerHourCents int64  `json:"price_per_hour_cents"`
}

// BikeService is the application service for fleet management and browsing.
type BikeService struct {
	bikes  bikeDomain.BikeRepository
	logger *zap.Logger
}

// NewBikeService creates a new BikeService.
func NewBikeService(bikes bikeDomain.BikeRepository, logger *zap.Logger) *BikeService {
	return &BikeService{bikes: bikes, logger: logger}
}

// ListBikes retrieves bikes with pagination, optionally filtered by status.
func (s *BikeService) ListBikes(ctx context.Context, status *bikeDomain.BikeStatus, page, limit int) (*domain.PaginatedResult[BikeDTO], error) {
	var (
		bikes []*bikeDomain.Bike
		total int64
		err   error
	)
	if status != nil {
		bikes, total, err = s.bikes.ListByStatus(ctx, *status, page, limit)
	} else {
		bikes, total, err = s.bikes.ListAll(ctx, page, limit)
	}
	if err != nil {
		return nil, err
	}

	dtos := make([]BikeDTO, len(bikes))
	for i, b := range bikes {
		dtos[i] = toBikeDTO(b)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetBike retrieves a single bike by ID.
func (s *BikeService) GetBike(ctx context.Context, bikeID uuid.UUID) (*BikeDTO, error) {
	b, err := s.bikes.FindByID(ctx, bikeID)
	if err != nil {
		return nil, err
	}
	result := toBikeDTO(b)
	return &result, nil
}

// CreateBike adds a bike to the fleet (admin).
func (s *BikeService) CreateBike(ctx context.Context, actor profile.Actor, req UpsertBikeRequest) (*BikeDTO, error) {
	if err := authorize(OpManageFleet, actor); err != nil {
		return nil, err
	}

	b, err := bikeDomain.NewBike(req.Name, req.Description, req.ImageURL, req.Station, req.PricePerHourCents)
	if err != nil {
		return nil, err
	}
	if err := s.bikes.Save(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("bike added to fleet",
		zap.String("bike_id", b.ID().String()),
		zap.String("name", b.Name()),
	)

	result := toBikeDTO(b)
	return &result, nil
}

// UpdateBike applies fleet edits to a bike (admin).
func (s *BikeService) UpdateBike(ctx context.Context, actor profile.Actor, bikeID uuid.UUID, req UpsertBikeRequest) (*BikeDTO, error) {
	if err := authorize(OpManageFleet, actor); err != nil {
		return nil, err
	}

	b, err := s.bikes.FindByID(ctx, bikeID)
	if err != nil {
		return nil, err
	}
	if err := b.Update(req.Name, req.Description, req.ImageURL, req.Station, req.PricePerHourCents); err != nil {
		return nil, err
	}
	if err := s.bikes.Update(ctx, b); err != nil {
		return nil, err
	}

	result := toBikeDTO(b)
	return &result, nil
}

// SetBikeStatus applies a manual status edit by staff (warden or admin).
func (s *BikeService) SetBikeStatus(ctx context.Context, actor profile.Actor, bikeID uuid.UUID, status bikeDomain.BikeStatus) (*BikeDTO, error) {
	if err := authorize(OpEditBikeStatus, actor); err != nil {
		return nil, err
	}

	b, err := s.bikes.FindByID(ctx, bikeID)
	if err != nil {
		return nil, err
	}
	if err := b.SetStatus(status); err != nil {
		return nil, err
	}
	if err := s.bikes.Update(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("bike status edited",
		zap.String("bike_id", b.ID().String()),
		zap.String("status", string(status)),
		zap.String("actor_id", actor.ID.String()),
	)

	result := toBikeDTO(b)
	return &result, nil
}

// DeleteBike removes a bike from the fleet (admin).
func (s *BikeService) DeleteBike(ctx context.Context, actor profile.Actor, bikeID uuid.UUID) error {
	if err := authorize(OpManageFleet, actor); err != nil {
		return err
	}
	if _, err := s.bikes.FindByID(ctx, bikeID); err != nil {
		return err
	}
	return s.bikes.Delete(ctx, bikeID)
}

// FlagForMaintenance flips a bike to maintenance on behalf of the fleet
// inspection feed. Unlike SetBikeStatus it has no acting user.
func (s *BikeService) FlagForMaintenance(ctx context.Context, bikeID uuid.UUID, reason string) error {
	b, err := s.bikes.FindByID(ctx, bikeID)
	if err != nil {
		return err
	}
	if err := b.SetStatus(bikeDomain.StatusMaintenance); err != nil {
		return err
	}
	if err := s.bikes.Update(ctx, b); err != nil {
		return err
	}

	s.logger.Info("bike flagged for maintenance",
		zap.String("bike_id", bikeID.String()),
		zap.String("reason", reason),
	)
	return nil
}

func toBikeDTO(b *bikeDomain.Bike) BikeDTO {
	return BikeDTO{
		ID:                b.ID(),
		Name:              b.Name(),
		Description:       b.Description(),
		ImageURL:          b.ImageURL(),
		Station:           b.Station(),
		PricePerHourCents: b.PricePerHourCents(),
		Status:            string(b.Status()),
		Version:           b.Version(),
		CreatedAt:         b.CreatedAt(),
		UpdatedAt:         b.UpdatedAt(),
	}
}
