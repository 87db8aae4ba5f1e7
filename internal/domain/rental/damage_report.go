package rental

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecoride-campus/service-rental/internal/domain"
)

// DamageReport is an append-only record of a damage inspection filed by
// a warden against a booking. Multiple reports may exist per booking;
// the booking's damage charge reflects the latest filed amount.
type DamageReport struct {
	id                uuid.UUID
	bookingID         uuid.UUID
	wardenID          uuid.UUID
	description       string
	chargeAmountCents int64
	createdAt         time.Time
}

// NewDamageReport creates a damage report with validated fields.
func NewDamageReport(bookingID, wardenID uuid.UUID, description string, chargeAmountCents int64) (*DamageReport, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if wardenID == uuid.Nil {
		return nil, domain.NewValidationError("warden ID is required")
	}
	if description == "" {
		return nil, domain.NewValidationError("damage description is required")
	}
	if chargeAmountCents < 0 {
		return nil, domain.NewValidationError("charge amount cannot be negative")
	}

	return &DamageReport{
		id:                uuid.New(),
		bookingID:         bookingID,
		wardenID:          wardenID,
		description:       description,
		chargeAmountCents: chargeAmountCents,
		createdAt:         time.Now().UTC(),
	}, nil
}

// ReconstructDamageReport rebuilds a DamageReport from persistence data.
func ReconstructDamageReport(
	id, bookingID, wardenID uuid.UUID,
	description string,
	chargeAmountCents int64,
	createdAt time.Time,
) *DamageReport {
	return &DamageReport{
		id:                id,
		bookingID:         bookingID,
		wardenID:          wardenID,
		description:       description,
		chargeAmountCents: chargeAmountCents,
		createdAt:         createdAt,
	}
}

func (d *DamageReport) ID() uuid.UUID            { return d.id }
func (d *DamageReport) BookingID() uuid.UUID     { return d.bookingID }
func (d *DamageReport) WardenID() uuid.UUID      { return d.wardenID }
func (d *DamageReport) Description() string      { return d.description }
func (d *DamageReport) ChargeAmountCents() int64 { return d.chargeAmountCents }
func (d *DamageReport) CreatedAt() time.Time     { return d.createdAt }
