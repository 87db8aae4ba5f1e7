package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecoride-campus/service-rental/internal/domain"
	"github.com/ecoride-campus/service-rental/internal/domain/bike"
)

// BikeModel is the GORM model for the bikes table.
type BikeModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name              string    `gorm:"not null;size:120"`
	Description       string    `gorm:"type:text"`
	ImageURL          string    `gorm:"size:500"`
	Station           string    `gorm:"not null;size:120;index"`
	PricePerHourCents int64     `gorm:"not null"`
	Status            string    `gorm:"not null;size:30;index"`
	Version           int64     `gorm:"not null;default:1"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BikeModel) TableName() string {
	return "bikes"
}

// GormBikeRepository is the GORM-based implementation of BikeRepository.
type GormBikeRepository struct {
	db *gorm.DB
}

// NewGormBikeRepository creates a new GormBikeRepository.
func NewGormBikeRepository(db *gorm.DB) *GormBikeRepository {
	return &GormBikeRepository{db: db}
}

// FindByID retrieves a bike by its unique identifier.
func (r *GormBikeRepository) FindByID(ctx context.Context, id uuid.UUID) (*bike.Bike, error) {
	var model BikeModel
	if err := dbFromContext(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Bike", id.String())
		}
		return nil, fmt.Errorf("failed to find bike by ID: %w", err)
	}
	return toDomainBike(&model)
}

// ListAll retrieves all bikes with pagination.
func (r *GormBikeRepository) ListAll(ctx context.Context, page, limit int) ([]*bike.Bike, int64, error) {
	db := dbFromContext(ctx, r.db)

	var total int64
	if err := db.Model(&BikeModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bikes: %w", err)
	}

	var models []BikeModel
	offset := (page - 1) * limit
	if err := db.
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bikes: %w", err)
	}

	bikes, err := toDomainBikes(models)
	if err != nil {
		return nil, 0, err
	}
	return bikes, total, nil
}

// ListByStatus retrieves bikes in the given status with pagination.
func (r *GormBikeRepository) ListByStatus(ctx context.Context, status bike.BikeStatus, page, limit int) ([]*bike.Bike, int64, error) {
	db := dbFromContext(ctx, r.db)

	var total int64
	if err := db.Model(&BikeModel{}).Where("status = ?", string(status)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bikes by status: %w", err)
	}

	var models []BikeModel
	offset := (page - 1) * limit
	if err := db.
		Where("status = ?", string(status)).
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bikes by status: %w", err)
	}

	bikes, err := toDomainBikes(models)
	if err != nil {
		return nil, 0, err
	}
	return bikes, total, nil
}

// CountByStatus returns bike counts grouped by status.
func (r *GormBikeRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := dbFromContext(ctx, r.db).Model(&BikeModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count bikes by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new bike.
func (r *GormBikeRepository) Save(ctx context.Context, b *bike.Bike) error {
	model := toBikeModel(b)
	if err := dbFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save bike: %w", err)
	}
	return nil
}

// Update persists changes to an existing bike with optimistic locking.
func (r *GormBikeRepository) Update(ctx context.Context, b *bike.Bike) error {
	model := toBikeModel(b)

	expectedVersion := b.Version() - 1
	result := dbFromContext(ctx, r.db).
		Model(&BikeModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":                 model.Name,
			"description":          model.Description,
			"image_url":            model.ImageURL,
			"station":              model.Station,
			"price_per_hour_cents": model.PricePerHourCents,
			"status":               model.Status,
			"version":              model.Version,
			"updated_at":           model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update bike: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("bike was modified by another transaction")
	}
	return nil
}

// Delete removes a bike.
func (r *GormBikeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).Where("id = ?", id).Delete(&BikeModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete bike: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Bike", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toBikeModel(b *bike.Bike) *BikeModel {
	return &BikeModel{
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

func toDomainBike(m *BikeModel) (*bike.Bike, error) {
	status, err := bike.ParseBikeStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bike.Reconstruct(
		m.ID,
		m.Name,
		m.Description,
		m.ImageURL,
		m.Station,
		m.PricePerHourCents,
		status,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBikes(models []BikeModel) ([]*bike.Bike, error) {
	bikes := make([]*bike.Bike, len(models))
	for i, m := range models {
		b, err := toDomainBike(&m)
		if err != nil {
			return nil, err
		}
		bikes[i] = b
	}
	return bikes, nil
}
