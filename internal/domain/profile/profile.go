package profile

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ecoride-campus/service-rental/internal/domain"
)

// Role is the authorization role of an actor.
type Role string

const (
	RoleRenter Role = "renter"
	RoleWarden Role = "warden"
	RoleAdmin  Role = "admin"
)

// IsValid returns true if the role is recognized.
func (r Role) IsValid() bool {
	switch r {
	case RoleRenter, RoleWarden, RoleAdmin:
		return true
	}
	return false
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// ParseRole converts a string to a Role, returning an error if invalid.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return role, nil
}

// Actor is the authenticated identity performing an operation, as
// yielded by the auth collaborator.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Profile is the aggregate root for a user profile.
type Profile struct {
	id        uuid.UUID
	email     string
	fullName  string
	role      Role
	createdAt time.Time
	updatedAt time.Time
}

// NewProfile creates a new profile with validated fields.
func NewProfile(id uuid.UUID, email, fullName string, role Role) (*Profile, error) {
	if id == uuid.Nil {
		return nil, domain.NewValidationError("profile ID is required")
	}
	if email == "" {
		return nil, domain.NewValidationError("email is required")
	}
	if !role.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid role: %s", role))
	}

	now := time.Now().UTC()
	return &Profile{
		id:        id,
		email:     email,
		fullName:  fullName,
		role:      role,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Profile from persistence data (no validation).
func Reconstruct(id uuid.UUID, email, fullName string, role Role, createdAt, updatedAt time.Time) *Profile {
	return &Profile{
		id:        id,
		email:     email,
		fullName:  fullName,
		role:      role,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (p *Profile) ID() uuid.UUID        { return p.id }
func (p *Profile) Email() string        { return p.email }
func (p *Profile) FullName() string     { return p.fullName }
func (p *Profile) Role() Role           { return p.role }
func (p *Profile) CreatedAt() time.Time { return p.createdAt }
func (p *Profile) UpdatedAt() time.Time { return p.updatedAt }

// Actor returns the profile as an acting identity.
func (p *Profile) Actor() Actor {
	return Actor{ID: p.id, Role: p.role}
}
