package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecoride-campus/service-rental/internal/domain"
	"github.com/ecoride-campus/service-rental/internal/domain/profile"
)

// ProfileModel is the GORM model for the profiles table.
type ProfileModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"uniqueIndex;not null;size:255"`
	FullName  string    `gorm:"not null;size:255"`
	Role      string    `gorm:"not null;size:30;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ProfileModel) TableName() string {
	return "profiles"
}

// GormProfileRepository is the GORM-based implementation of ProfileRepository.
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository.
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// FindByID retrieves a profile by its unique identifier.
func (r *GormProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	var model ProfileModel
	if err := dbFromContext(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Profile", id.String())
		}
		return nil, fmt.Errorf("failed to find profile by ID: %w", err)
	}
	return toDomainProfile(&model)
}

// ListAll retrieves all profiles with pagination.
func (r *GormProfileRepository) ListAll(ctx context.Context, page, limit int) ([]*profile.Profile, int64, error) {
	db := dbFromContext(ctx, r.db)

	var total int64
	if err := db.Model(&ProfileModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	var models []ProfileModel
	offset := (page - 1) * limit
	if err := db.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}

	profiles := make([]*profile.Profile, len(models))
	for i, m := range models {
		p, err := toDomainProfile(&m)
		if err != nil {
			return nil, 0, err
		}
		profiles[i] = p
	}
	return profiles, total, nil
}

// Save upserts a profile.
func (r *GormProfileRepository) Save(ctx context.Context, p *profile.Profile) error {
	model := toProfileModel(p)
	if err := dbFromContext(ctx, r.db).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// --- Conversion Helpers ---

func toProfileModel(p *profile.Profile) *ProfileModel {
	return &ProfileModel{
		ID:        p.ID(),
		Email:     p.Email(),
		FullName:  p.FullName(),
		Role:      string(p.Role()),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}

func toDomainProfile(m *ProfileModel) (*profile.Profile, error) {
	role, err := profile.ParseRole(m.Role)
	if err != nil {
		return nil, err
	}
	return profile.Reconstruct(m.ID, m.Email, m.FullName, role, m.CreatedAt, m.UpdatedAt), nil
}
