package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ecoride-campus/service-rental/internal/kafka"
)

// Source identifies this service in published event envelopes.
const Source = "service-rental"

// Topics.
const (
	TopicRentalEvents = "rental.events"
	TopicFleetEvents  = "fleet.events"
)

// Event types.
const (
	RentalRequested      = "rental.requested"
	RentalApproved       = "rental.approved"
	RentalRejected       = "rental.rejected"
	RentalActivated      = "rental.activated"
	RentalReturned       = "rental.returned"
	RentalDamageReported = "rental.damage_reported"

	BikeMaintenanceRequested = "fleet.bike.maintenance_requested"
)

// Publisher publishes CloudEvents. Satisfied by kafka.Producer;
// services depend on this port so tests can record events in memory.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// RentalRequestedEvent is emitted when a renter creates a booking.
type RentalRequestedEvent struct {
	BookingID      uuid.UUID `json:"booking_id"`
	Reference      string    `json:"reference"`
	UserID         uuid.UUID `json:"user_id"`
	BikeID         uuid.UUID `json:"bike_id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	TotalCostCents int64     `json:"total_cost_cents"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// RentalApprovedEvent is emitted when a warden or admin approves a booking.
type RentalApprovedEvent struct {
	BookingID      uuid.UUID `json:"booking_id"`
	Reference      string    `json:"reference"`
	ApprovedByRole string    `json:"approved_by_role"`
	WardenApproved bool      `json:"warden_approved"`
	AdminApproved  bool      `json:"admin_approved"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// RentalRejectedEvent is emitted when a warden rejects a pending booking.
type RentalRejectedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Reference  string    `json:"reference"`
	UserID     uuid.UUID `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RentalActivatedEvent is emitted when a warden hands over the bike.
type RentalActivatedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Reference  string    `json:"reference"`
	BikeID     uuid.UUID `json:"bike_id"`
	UserID     uuid.UUID `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RentalReturnedEvent is emitted when a warden confirms a return.
type RentalReturnedEvent struct {
	BookingID           uuid.UUID `json:"booking_id"`
	Reference           string    `json:"reference"`
	BikeID              uuid.UUID `json:"bike_id"`
	UserID              uuid.UUID `json:"user_id"`
	ReturnedAt          time.Time `json:"returned_at"`
	OvertimeChargeCents int64     `json:"overtime_charge_cents"`
	DamageChargeCents   int64     `json:"damage_charge_cents"`
	TotalAmountCents    int64     `json:"total_amount_cents"`
	OccurredAt          time.Time `json:"occurred_at"`
}

// RentalDamageReportedEvent is emitted when a warden files a damage report.
type RentalDamageReportedEvent struct {
	BookingID         uuid.UUID `json:"booking_id"`
	ReportID          uuid.UUID `json:"report_id"`
	WardenID          uuid.UUID `json:"warden_id"`
	ChargeAmountCents int64     `json:"charge_amount_cents"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// BikeMaintenanceRequestedEvent is consumed from the fleet topic when
// an external inspection flags a bike for maintenance.
type BikeMaintenanceRequestedEvent struct {
	BikeID     uuid.UUID `json:"bike_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
