package rental

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// nonTerminalStatuses are the statuses that block a bike's time slot.
var nonTerminalStatuses = []BookingStatus{StatusPending, StatusApproved, StatusActive}

// NonTerminalStatuses returns the statuses counted in slot-overlap checks.
func NonTerminalStatuses() []BookingStatus {
	out := make([]BookingStatus, len(nonTerminalStatuses))
	copy(out, nonTerminalStatuses)
	return out
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByReference retrieves a booking by its human-readable reference.
	FindByReference(ctx context.Context, reference string) (*Booking, error)

	// FindByUserID retrieves bookings belonging to a renter with pagination.
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByStatuses retrieves bookings in any of the given statuses with
	// pagination, oldest first (warden work queues).
	FindByStatuses(ctx context.Context, statuses []BookingStatus, page, limit int) ([]*Booking, int64, error)

	// CountOverlapping counts non-terminal bookings for the bike whose
	// [start, end) interval overlaps the given half-open interval.
	CountOverlapping(ctx context.Context, bikeID uuid.UUID, start, end time.Time) (int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// SumReturnedTotalCents returns the revenue total over returned
	// bookings (admin).
	SumReturnedTotalCents(ctx context.Context) (int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}

// ReceiptRepository defines persistence operations for receipts.
// Receipts are append-only; there is no update.
type ReceiptRepository interface {
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*Receipt, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Receipt, int64, error)
	Save(ctx context.Context, receipt *Receipt) error
}

// DamageReportRepository defines persistence operations for damage reports.
type DamageReportRepository interface {
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*DamageReport, error)
	Save(ctx context.Context, report *DamageReport) error
}
