package rental

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/ecoride-campus/service-rental/internal/domain"
)

const referenceChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the rental lifecycle. All state
// transitions and charge mutations go through its methods; once the
// booking reaches a terminal status no method mutates it again.
type Booking struct {
	id                    uuid.UUID
	reference             string
	userID                uuid.UUID
	bikeID                uuid.UUID
	startTime             time.Time
	endTime               time.Time
	expectedDurationHours int
	actualReturnTime      *time.Time
	status                BookingStatus
	wardenApproved        bool
	adminApproved         bool
	totalCostCents        int64
	overtimeChargeCents   int64
	damageChargeCents     int64

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateReference creates a booking reference in the format "EC-XXXXXX".
func generateReference() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking reference: %w", err)
		}
		result[i] = referenceChars[n.Int64()]
	}
	return "EC-" + string(result), nil
}

// NewBooking creates a new Booking with status=pending and the base
// cost fixed from the bike's hourly price.
func NewBooking(
	userID uuid.UUID,
	bikeID uuid.UUID,
	startTime time.Time,
	durationHours int,
	pricePerHourCents int64,
) (*Booking, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if bikeID == uuid.Nil {
		return nil, domain.NewValidationError("bike ID is required")
	}
	if startTime.IsZero() {
		return nil, domain.NewValidationError("start time is required")
	}
	if durationHours <= 0 {
		return nil, domain.NewValidationError("duration must be a positive number of hours")
	}
	if pricePerHourCents < 0 {
		return nil, domain.NewValidationError("price per hour cannot be negative")
	}

	reference, err := generateReference()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:                    uuid.New(),
		reference:             reference,
		userID:                userID,
		bikeID:                bikeID,
		startTime:             startTime.UTC(),
		endTime:               startTime.UTC().Add(time.Duration(durationHours) * time.Hour),
		expectedDurationHours: durationHours,
		status:                StatusPending,
		totalCostCents:        BaseCostCents(pricePerHourCents, durationHours),
		version:               1,
		createdAt:             now,
		updatedAt:             now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	reference string,
	userID uuid.UUID,
	bikeID uuid.UUID,
	startTime time.Time,
	endTime time.Time,
	expectedDurationHours int,
	actualReturnTime *time.Time,
	status BookingStatus,
	wardenApproved bool,
	adminApproved bool,
	totalCostCents int64,
	overtimeChargeCents int64,
	damageChargeCents int64,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                    id,
		reference:             reference,
		userID:                userID,
		bikeID:                bikeID,
		startTime:             startTime,
		endTime:               endTime,
		expectedDurationHours: expectedDurationHours,
		actualReturnTime:      actualReturnTime,
		status:                status,
		wardenApproved:        wardenApproved,
		adminApproved:         adminApproved,
		totalCostCents:        totalCostCents,
		overtimeChargeCents:   overtimeChargeCents,
		damageChargeCents:     damageChargeCents,
		version:               version,
		createdAt:             createdAt,
		updatedAt:             updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// Reference returns the human-readable booking reference.
func (b *Booking) Reference() string { return b.reference }

// UserID returns the renter's user ID.
func (b *Booking) UserID() uuid.UUID { return b.userID }

// BikeID returns the booked bike's ID.
func (b *Booking) BikeID() uuid.UUID { return b.bikeID }

// StartTime returns the scheduled rental start.
func (b *Booking) StartTime() time.Time { return b.startTime }

// EndTime returns the scheduled rental end.
func (b *Booking) EndTime() time.Time { return b.endTime }

// ExpectedDurationHours returns the booked duration in hours.
func (b *Booking) ExpectedDurationHours() int { return b.expectedDurationHours }

// ActualReturnTime returns the return timestamp, or nil until returned.
func (b *Booking) ActualReturnTime() *time.Time { return b.actualReturnTime }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// WardenApproved reports whether a warden has approved the booking.
func (b *Booking) WardenApproved() bool { return b.wardenApproved }

// AdminApproved reports whether an admin has approved the booking.
func (b *Booking) AdminApproved() bool { return b.adminApproved }

// TotalCostCents returns the total cost: the fixed base cost until
// return, the final amount (base + overtime + damage) afterwards.
func (b *Booking) TotalCostCents() int64 { return b.totalCostCents }

// OvertimeChargeCents returns the overtime charge computed at return.
func (b *Booking) OvertimeChargeCents() int64 { return b.overtimeChargeCents }

// DamageChargeCents returns the latest filed damage charge.
func (b *Booking) DamageChargeCents() int64 { return b.damageChargeCents }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// DisplayedTotalCents returns the charge total shown to the renter:
// total cost plus overtime and damage charges.
func (b *Booking) DisplayedTotalCents() int64 {
	return b.totalCostCents + b.overtimeChargeCents + b.damageChargeCents
}

// OverlapsInterval reports whether the booking's [start, end) interval
// overlaps the given half-open interval. Back-to-back bookings that
// meet exactly at a boundary timestamp do not overlap.
func (b *Booking) OverlapsInterval(start, end time.Time) bool {
	return b.startTime.Before(end) && b.endTime.After(start)
}

// --- Behavior ---

// ApproveByWarden records warden approval. The first approval of either
// role on a pending booking transitions it to approved; approving again
// is idempotent.
func (b *Booking) ApproveByWarden() error {
	return b.approve(&b.wardenApproved)
}

// ApproveByAdmin records admin approval. The first approval of either
// role on a pending booking transitions it to approved; approving again
// is idempotent.
func (b *Booking) ApproveByAdmin() error {
	return b.approve(&b.adminApproved)
}

func (b *Booking) approve(flag *bool) error {
	if b.status != StatusPending && b.status != StatusApproved {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusApproved))
	}
	if *flag && b.status == StatusApproved {
		return nil
	}
	*flag = true
	if b.status == StatusPending {
		b.status = StatusApproved
	}
	b.touch()
	return nil
}

// Reject transitions the booking from pending to rejected and resets
// the warden approval flag. Terminal.
func (b *Booking) Reject() error {
	if !b.status.CanTransitionTo(StatusRejected) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusRejected))
	}
	b.status = StatusRejected
	b.wardenApproved = false
	b.touch()
	return nil
}

// Activate transitions the booking from approved to active. Both
// approval flags must already be set.
func (b *Booking) Activate() error {
	if !b.status.CanTransitionTo(StatusActive) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusActive))
	}
	if !b.wardenApproved || !b.adminApproved {
		return domain.NewApprovalIncompleteError("both warden and admin approval are required before activation")
	}
	b.status = StatusActive
	b.touch()
	return nil
}

// ConfirmReturn transitions the booking from active to returned,
// computes the overtime charge and folds overtime and any filed damage
// charge into the final total cost.
func (b *Booking) ConfirmReturn(now time.Time) error {
	if !b.status.CanTransitionTo(StatusReturned) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusReturned))
	}
	returnedAt := now.UTC()
	overtime := OvertimeChargeCents(b.endTime, returnedAt)

	b.status = StatusReturned
	b.actualReturnTime = &returnedAt
	b.overtimeChargeCents = overtime
	b.totalCostCents = b.totalCostCents + overtime + b.damageChargeCents
	b.touch()
	return nil
}

// SetDamageCharge records the latest filed damage charge on the
// booking. The charge may be raised but never lowered, and a terminal
// booking is never mutated; damage filed after return lives only on its
// DamageReport.
func (b *Booking) SetDamageCharge(chargeCents int64) error {
	if b.status.IsTerminal() {
		return domain.NewInvalidTransitionError(string(b.status), string(b.status))
	}
	if chargeCents < 0 {
		return domain.NewValidationError("damage charge cannot be negative")
	}
	if chargeCents < b.damageChargeCents {
		return domain.NewValidationError("damage charge cannot be lowered once filed")
	}
	b.damageChargeCents = chargeCents
	b.touch()
	return nil
}

func (b *Booking) touch() {
	b.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
