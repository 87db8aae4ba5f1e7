package bike

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ecoride-campus/service-rental/internal/domain"
)

// BikeStatus represents the availability state of a bike.
type BikeStatus string

const (
	StatusAvailable   BikeStatus = "available"
	StatusRented      BikeStatus = "rented"
	StatusMaintenance BikeStatus = "maintenance"
)

// IsValid returns true if the status is a recognized bike status.
func (s BikeStatus) IsValid() bool {
	switch s {
	case StatusAvailable, StatusRented, StatusMaintenance:
		return true
	}
	return false
}

// String returns the string representation of the status.
func (s BikeStatus) String() string {
	return string(s)
}

// ParseBikeStatus converts a string to a BikeStatus, returning an error if invalid.
func ParseBikeStatus(s string) (BikeStatus, error) {
	status := BikeStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid bike status: %s", s)
	}
	return status, nil
}

// Bike is the aggregate root for a fleet bike. Its status is secondary
// state: it is flipped by booking lifecycle transitions and by manual
// staff edits, never by renters directly.
type Bike struct {
	id                uuid.UUID
	name              string
	description       string
	imageURL          string
	station           string
	pricePerHourCents int64
	status            BikeStatus
	version           int64
	createdAt         time.Time
	updatedAt         time.Time
}

// NewBike creates a new available bike with validated fields.
func NewBike(name, description, imageURL, station string, pricePerHourCents int64) (*Bike, error) {
	if name == "" {
		return nil, domain.NewValidationError("bike name is required")
	}
	if pricePerHourCents < 0 {
		return nil, domain.NewValidationError("price per hour cannot be negative")
	}

	now := time.Now().UTC()
	return &Bike{
		id:                uuid.New(),
		name:              name,
		description:       description,
		imageURL:          imageURL,
		station:           station,
		pricePerHourCents: pricePerHourCents,
		status:            StatusAvailable,
		version:           1,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

// Reconstruct rebuilds a Bike from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	name, description, imageURL, station string,
	pricePerHourCents int64,
	status BikeStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Bike {
	return &Bike{
		id:                id,
		name:              name,
		description:       description,
		imageURL:          imageURL,
		station:           station,
		pricePerHourCents: pricePerHourCents,
		status:            status,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// --- Getters ---

func (b *Bike) ID() uuid.UUID            { return b.id }
func (b *Bike) Name() string             { return b.name }
func (b *Bike) Description() string      { return b.description }
func (b *Bike) ImageURL() string         { return b.imageURL }
func (b *Bike) Station() string          { return b.station }
func (b *Bike) PricePerHourCents() int64 { return b.pricePerHourCents }
func (b *Bike) Status() BikeStatus       { return b.status }
func (b *Bike) Version() int64           { return b.version }
func (b *Bike) CreatedAt() time.Time     { return b.createdAt }
func (b *Bike) UpdatedAt() time.Time     { return b.updatedAt }

// --- Behavior ---

// IsAvailable returns true if the bike can accept new booking requests.
func (b *Bike) IsAvailable() bool {
	return b.status == StatusAvailable
}

// MarkRented flips the bike to rented when a rental is activated.
func (b *Bike) MarkRented() error {
	if b.status != StatusAvailable {
		return domain.NewBikeUnavailableError(fmt.Sprintf("bike %s is %s", b.id, b.status))
	}
	b.status = StatusRented
	b.touch()
	return nil
}

// MarkAvailable flips the bike back to available when a rental is returned.
func (b *Bike) MarkAvailable() {
	b.status = StatusAvailable
	b.touch()
}

// SetStatus applies a manual staff status edit.
func (b *Bike) SetStatus(status BikeStatus) error {
	if !status.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid bike status: %s", status))
	}
	b.status = status
	b.touch()
	return nil
}

// Update applies partial fleet edits to the bike.
func (b *Bike) Update(name, description, imageURL, station string, pricePerHourCents int64) error {
	if pricePerHourCents < 0 {
		return domain.NewValidationError("price per hour cannot be negative")
	}
	if name != "" {
		b.name = name
	}
	if description != "" {
		b.description = description
	}
	if imageURL != "" {
		b.imageURL = imageURL
	}
	if station != "" {
		b.station = station
	}
	if pricePerHourCents > 0 {
		b.pricePerHourCents = pricePerHourCents
	}
	b.touch()
	return nil
}

func (b *Bike) touch() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
