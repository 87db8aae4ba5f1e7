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

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Reference             string     `gorm:"uniqueIndex;not null;size:20"`
	UserID                uuid.UUID  `gorm:"type:uuid;index;not null"`
	BikeID                uuid.UUID  `gorm:"type:uuid;index;not null"`
	StartTime             time.Time  `gorm:"not null;index"`
	EndTime               time.Time  `gorm:"not null"`
	ExpectedDurationHours int        `gorm:"not null"`
	ActualReturnTime      *time.Time `gorm:""`
	Status                string     `gorm:"not null;size:30;index"`
	WardenApproved        bool       `gorm:"not null;default:false"`
	AdminApproved         bool       `gorm:"not null;default:false"`
	TotalCostCents        int64      `gorm:"not null"`
	OvertimeChargeCents   int64      `gorm:"not null;default:0"`
	DamageChargeCents     int64      `gorm:"not null;default:0"`
	Version               int64      `gorm:"not null;default:1"`
	CreatedAt             time.Time  `gorm:"not null"`
	UpdatedAt             time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Booking, error) {
	var model BookingModel
	if err := dbFromContext(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByReference retrieves a booking by its human-readable reference.
func (r *GormBookingRepository) FindByReference(ctx context.Context, reference string) (*rental.Booking, error) {
	var model BookingModel
	if err := dbFromContext(ctx, r.db).Where("reference = ?", reference).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", reference)
		}
		return nil, fmt.Errorf("failed to find booking by reference: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByUserID retrieves bookings for a renter with pagination, newest first.
func (r *GormBookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*rental.Booking, int64, error) {
	db := dbFromContext(ctx, r.db)

	var total int64
	if err := db.Model(&BookingModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count user bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find user bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// FindByStatuses retrieves bookings in any of the given statuses with
// pagination, oldest first so work queues are processed in arrival order.
func (r *GormBookingRepository) FindByStatuses(ctx context.Context, statuses []rental.BookingStatus, page, limit int) ([]*rental.Booking, int64, error) {
	db := dbFromContext(ctx, r.db)
	values := statusStrings(statuses)

	var total int64
	if err := db.Model(&BookingModel{}).Where("status IN ?", values).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings by status: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := db.
		Where("status IN ?", values).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings by status: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountOverlapping counts non-terminal bookings for the bike whose
// [start, end) interval overlaps the given half-open interval. Bookings
// that meet exactly at a boundary timestamp do not count.
func (r *GormBookingRepository) CountOverlapping(ctx context.Context, bikeID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	err := dbFromContext(ctx, r.db).
		Model(&BookingModel{}).
		Where("bike_id = ?", bikeID).
		Where("status IN ?", statusStrings(rental.NonTerminalStatuses())).
		Where("start_time < ? AND end_time > ?", end, start).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	return count, nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*rental.Booking, int64, error) {
	db := dbFromContext(ctx, r.db)

	var total int64
	if err := db.Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := db.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := dbFromContext(ctx, r.db).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// SumReturnedTotalCents returns the revenue total over returned bookings.
func (r *GormBookingRepository) SumReturnedTotalCents(ctx context.Context) (int64, error) {
	var sum int64
	err := dbFromContext(ctx, r.db).Model(&BookingModel{}).
		Select("COALESCE(SUM(total_cost_cents), 0)").
		Where("status = ?", string(rental.StatusReturned)).
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum returned totals: %w", err)
	}
	return sum, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *rental.Booking) error {
	model := toBookingModel(bk)
	if err := dbFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *rental.Booking) error {
	model := toBookingModel(bk)

	// IncrementVersion was called before Update, so the row must still
	// hold the previous version.
	expectedVersion := bk.Version() - 1
	result := dbFromContext(ctx, r.db).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"actual_return_time":    model.ActualReturnTime,
			"status":                model.Status,
			"warden_approved":       model.WardenApproved,
			"admin_approved":        model.AdminApproved,
			"total_cost_cents":      model.TotalCostCents,
			"overtime_charge_cents": model.OvertimeChargeCents,
			"damage_charge_cents":   model.DamageChargeCents,
			"version":               model.Version,
			"updated_at":            model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func statusStrings(statuses []rental.BookingStatus) []string {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	return values
}

func toBookingModel(bk *rental.Booking) *BookingModel {
	return &BookingModel{
		ID:                    bk.ID(),
		Reference:             bk.Reference(),
		UserID:                bk.UserID(),
		BikeID:                bk.BikeID(),
		StartTime:             bk.StartTime(),
		EndTime:               bk.EndTime(),
		ExpectedDurationHours: bk.ExpectedDurationHours(),
		ActualReturnTime:      bk.ActualReturnTime(),
		Status:                string(bk.Status()),
		WardenApproved:        bk.WardenApproved(),
		AdminApproved:         bk.AdminApproved(),
		TotalCostCents:        bk.TotalCostCents(),
		OvertimeChargeCents:   bk.OvertimeChargeCents(),
		DamageChargeCents:     bk.DamageChargeCents(),
		Version:               bk.Version(),
		CreatedAt:             bk.CreatedAt(),
		UpdatedAt:             bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*rental.Booking, error) {
	status, err := rental.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return rental.ReconstructBooking(
		m.ID,
		m.Reference,
		m.UserID,
		m.BikeID,
		m.StartTime,
		m.EndTime,
		m.ExpectedDurationHours,
		m.ActualReturnTime,
		status,
		m.WardenApproved,
		m.AdminApproved,
		m.TotalCostCents,
		m.OvertimeChargeCents,
		m.DamageChargeCents,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*rental.Booking, error) {
	bookings := make([]*rental.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
