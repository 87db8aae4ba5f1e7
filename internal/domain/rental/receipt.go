package rental

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecoride-campus/service-rental/internal/domain"
)

// Receipt is the immutable financial record created exactly once when a
// booking is returned. It snapshots the charge breakdown at that moment
// and is never mutated afterwards.
type Receipt struct {
	id                  uuid.UUID
	bookingID           uuid.UUID
	userID              uuid.UUID
	baseCostCents       int64
	overtimeChargeCents int64
	damageChargeCents   int64
	totalAmountCents    int64
	createdAt           time.Time
}

// NewReceipt creates the receipt for a returned booking.
func NewReceipt(bookingID, userID uuid.UUID, baseCostCents, overtimeChargeCents, damageChargeCents int64) (*Receipt, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if baseCostCents < 0 || overtimeChargeCents < 0 || damageChargeCents < 0 {
		return nil, domain.NewValidationError("receipt amounts cannot be negative")
	}

	return &Receipt{
		id:                  uuid.New(),
		bookingID:           bookingID,
		userID:              userID,
		baseCostCents:       baseCostCents,
		overtimeChargeCents: overtimeChargeCents,
		damageChargeCents:   damageChargeCents,
		totalAmountCents:    baseCostCents + overtimeChargeCents + damageChargeCents,
		createdAt:           time.Now().UTC(),
	}, nil
}

// ReconstructReceipt rebuilds a Receipt from persistence data.
func ReconstructReceipt(
	id, bookingID, userID uuid.UUID,
	baseCostCents, overtimeChargeCents, damageChargeCents, totalAmountCents int64,
	createdAt time.Time,
) *Receipt {
	return &Receipt{
		id:                  id,
		bookingID:           bookingID,
		userID:              userID,
		baseCostCents:       baseCostCents,
		overtimeChargeCents: overtimeChargeCents,
		damageChargeCents:   damageChargeCents,
		totalAmountCents:    totalAmountCents,
		createdAt:           createdAt,
	}
}

func (r *Receipt) ID() uuid.UUID              { return r.id }
func (r *Receipt) BookingID() uuid.UUID       { return r.bookingID }
func (r *Receipt) UserID() uuid.UUID          { return r.userID }
func (r *Receipt) BaseCostCents() int64       { return r.baseCostCents }
func (r *Receipt) OvertimeChargeCents() int64 { return r.overtimeChargeCents }
func (r *Receipt) DamageChargeCents() int64   { return r.damageChargeCents }
func (r *Receipt) TotalAmountCents() int64    { return r.totalAmountCents }
func (r *Receipt) CreatedAt() time.Time       { return r.createdAt }
