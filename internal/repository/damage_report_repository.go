package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecoride-campus/service-rental/internal/domain/rental"
)

// DamageReportModel is the GORM model for the damage_reports table.
type DamageReportModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID         uuid.UUID `gorm:"type:uuid;index;not null"`
	WardenID          uuid.UUID `gorm:"type:uuid;not null"`
	Description       string    `gorm:"type:text;not null"`
	ChargeAmountCents int64     `gorm:"not null"`
	CreatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (DamageReportModel) TableName() string {
	return "damage_reports"
}

// GormDamageReportRepository is the GORM-based implementation of DamageReportRepository.
type GormDamageReportRepository struct {
	db *gorm.DB
}

// NewGormDamageReportRepository creates a new GormDamageReportRepository.
func NewGormDamageReportRepository(db *gorm.DB) *GormDamageReportRepository {
	return &GormDamageReportRepository{db: db}
}

// FindByBookingID retrieves all damage reports filed against a booking,
// oldest first.
func (r *GormDamageReportRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*rental.DamageReport, error) {
	var models []DamageReportModel
	if err := dbFromContext(ctx, r.db).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find damage reports: %w", err)
	}

	reports := make([]*rental.DamageReport, len(models))
	for i, m := range models {
		reports[i] = toDomainDamageReport(&m)
	}
	return reports, nil
}

// Save persists a new damage report.
func (r *GormDamageReportRepository) Save(ctx context.Context, report *rental.DamageReport) error {
	model := toDamageReportModel(report)
	if err := dbFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save damage report: %w", err)
	}
	return nil
}

// --- Conversion Helpers ---

func toDamageReportModel(d *rental.DamageReport) *DamageReportModel {
	return &DamageReportModel{
		ID:                d.ID(),
		BookingID:         d.BookingID(),
		WardenID:          d.WardenID(),
		Description:       d.Description(),
		ChargeAmountCents: d.ChargeAmountCents(),
		CreatedAt:         d.CreatedAt(),
	}
}

func toDomainDamageReport(m *DamageReportModel) *rental.DamageReport {
	return rental.ReconstructDamageReport(
		m.ID,
		m.BookingID,
		m.WardenID,
		m.Description,
		m.ChargeAmountCents,
		m.CreatedAt,
	)
}
