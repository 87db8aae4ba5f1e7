package application

import (
	"fmt"

	"github.com/ecoride-campus/service-rental/internal/domain"
	"github.com/ecoride-campus/service-rental/internal/domain/profile"
)

// Operation names for the authorization policy.
const (
	OpCreateBooking   = "booking.create"
	OpApproveAsWarden = "booking.approve_warden"
	OpApproveAsAdmin  = "booking.approve_admin"
	OpRejectAsWarden  = "booking.reject"
	OpActivateRental  = "booking.activate"
	OpConfirmReturn   = "booking.return"
	OpReportDamage    = "booking.report_damage"
	OpListAllBookings = "booking.list_all"
	OpViewStats       = "stats.view"
	OpManageFleet     = "fleet.manage"
	OpEditBikeStatus  = "fleet.edit_status"
	OpListUsers       = "users.list"
)

// operationRoles is the single place role gating is defined: every
// lifecycle operation checks the acting role here, not in presentation
// code.
var operationRoles = map[string][]profile.Role{
	OpCreateBooking:   {profile.RoleRenter},
	OpApproveAsWarden: {profile.RoleWarden},
	OpApproveAsAdmin:  {profile.RoleAdmin},
	OpRejectAsWarden:  {profile.RoleWarden},
	OpActivateRental:  {profile.RoleWarden},
	OpConfirmReturn:   {profile.RoleWarden},
	OpReportDamage:    {profile.RoleWarden},
	OpListAllBookings: {profile.RoleAdmin},
	OpViewStats:       {profile.RoleAdmin},
	OpManageFleet:     {profile.RoleAdmin},
	OpEditBikeStatus:  {profile.RoleWarden, profile.RoleAdmin},
	OpListUsers:       {profile.RoleAdmin},
}

// authorize checks that the actor's role is allowed to perform the
// operation.
func authorize(op string, actor profile.Actor) error {
	allowed, exists := operationRoles[op]
	if !exists {
		return domain.NewForbiddenError(fmt.Sprintf("unknown operation: %s", op))
	}
	for _, role := range allowed {
		if actor.Role == role {
			return nil
		}
	}
	return domain.NewForbiddenError(fmt.Sprintf("role %s may not perform %s", actor.Role, op))
}
