package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecoride-campus/service-rental/internal/domain"
	"github.com/ecoride-campus/service-rental/internal/domain/rental"
)

// ReceiptModel is the GORM model for the receipts table.
type ReceiptModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID           uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	UserID              uuid.UUID `gorm:"type:uuid;index;not null"`
	BaseCostCents       int64     `gorm:"not null"`
	OvertimeChargeCents int64     `gorm:"not null;default:0"`
	DamageChargeCents   int64     `gorm:"not null;default:0"`
	TotalAmountCents    int64     `gorm:"not null"`
	CreatedAt           time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ReceiptModel) TableName() string {
	return "receipts"
}

// GormReceiptRepository is the GORM-based implementation of ReceiptRepository.
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository.
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindByBookingID retrieves the receipt issued for a booking.
func (r *GormReceiptRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*rental.Receipt, error) {
	var model ReceiptModel
	if err := dbFromContext(ctx, r.db).Where("booking_id = ?", bookingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Receipt", bookingID.String())
		}
		return nil, fmt.Errorf("failed to find receipt by booking ID: %w", err)
	}
	return toDomainReceipt(&model), nil
}

// FindByUserID retrieves a renter's receipts with pagination, newest first.
func (r *GormReceiptRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*rental.Receipt, int64, error) {
	db := dbFromContext(ctx, r.db)

	var total int64
	if err := db.Model(&ReceiptModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count user receipts: %w", err)
	}

	var models []ReceiptModel
	offset := (page - 1) * limit
	if err := db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find user receipts: %w", err)
	}

	receipts := make([]*rental.Receipt, len(models))
	for i, m := range models {
		receipts[i] = toDomainReceipt(&m)
	}
	return receipts, total, nil
}

// Save persists a new receipt.
func (r *GormReceiptRepository) Save(ctx context.Context, receipt *rental.Receipt) error {
	model := toReceiptModel(receipt)
	if err := dbFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save receipt: %w", err)
	}
	return nil
}

// --- Conversion Helpers ---

func toReceiptModel(r *rental.Receipt) *ReceiptModel {
	return &ReceiptModel{
		ID:                  r.ID(),
		BookingID:           r.BookingID(),
		UserID:              r.UserID(),
		BaseCostCents:       r.BaseCostCents(),
		OvertimeChargeCents: r.OvertimeChargeCents(),
		DamageChargeCents:   r.DamageChargeCents(),
		TotalAmountCents:    r.TotalAmountCents(),
		CreatedAt:           r.CreatedAt(),
	}
}

func toDomainReceipt(m *ReceiptModel) *rental.Receipt {
	return rental.ReconstructReceipt(
		m.ID,
		m.BookingID,
		m.UserID,
		m.BaseCostCents,
		m.OvertimeChargeCents,
		m.DamageChargeCents,
		m.TotalAmountCents,
		m.CreatedAt,
	)
}
