package ticketing

import (
	"github.com/google/uuid"

	"github.com/parkpass/ticketing/internal/model"
)

// Role of a staff user.
type Role string

const (
	RoleSuperAdmin    Role = "super-admin"
	RoleParkAdmin     Role = "park-admin"
	RoleTicketChecker Role = "ticket-checker"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleParkAdmin, RoleTicketChecker:
		return true
	}
	return false
}

// Action an actor attempts.
type Action string

const (
	ActionView     Action = "view"
	ActionMarkUsed Action = "mark_used"
	ActionCancel   Action = "cancel"
	ActionDelete   Action = "delete"

	// Park-scoped catalog action.
	ActionEditPark Action = "edit_park"

	// Sales and visitor reports over the actor's parks.
	ActionViewReports Action = "view_reports"

	// Global actions, super-admin only.
	ActionManageDistricts Action = "manage_districts"
	ActionManageParks     Action = "manage_parks"
	ActionManageUsers     Action = "manage_users"
)

var parkScoped = map[Role]map[Action]bool{
	RoleParkAdmin: {
		ActionView: true, ActionMarkUsed: true, ActionCancel: true, ActionDelete: true,
		ActionEditPark: true, ActionViewReports: true,
	},
	RoleTicketChecker: {
		ActionView: true, ActionMarkUsed: true, ActionCancel: true, ActionDelete: true,
	},
}

// Actor is the authenticated principal, passed explicitly into every call.
type Actor struct {
	UserID        uuid.UUID
	Role          Role
	AssignedParks []uuid.UUID
}

func (a Actor) HasPark(parkID uuid.UUID) bool {
	for _, id := range a.AssignedParks {
		if id == parkID {
			return true
		}
	}
	return false
}

// Authorize decides whether actor may perform action on ticket. It must run
// before any transition is applied.
func Authorize(actor Actor, ticket *model.Booking, action Action) error {
	return AuthorizePark(actor, ticket.ParkID, action)
}

// AuthorizePark is Authorize for anything owned by a park.
func AuthorizePark(actor Actor, parkID uuid.UUID, action Action) error {
	if actor.Role == RoleSuperAdmin {
		return nil
	}
	allowed, ok := parkScoped[actor.Role]
	if !ok || !allowed[action] {
		return ErrWrongRole
	}
	if !actor.HasPark(parkID) {
		return ErrWrongPark
	}
	return nil
}

// AuthorizeGlobal gates actions that are not scoped to a park.
func AuthorizeGlobal(actor Actor, action Action) error {
	if actor.Role == RoleSuperAdmin {
		return nil
	}
	return ErrWrongRole
}

// AuthorizeScoped gates a park-scoped action that is not about one park, such
// as a report over every park the actor holds. Callers narrow to ParkScope.
func AuthorizeScoped(actor Actor, action Action) error {
	if actor.Role == RoleSuperAdmin {
		return nil
	}
	if allowed, ok := parkScoped[actor.Role]; !ok || !allowed[action] {
		return ErrWrongRole
	}
	return nil
}

// ParkScope returns the parks actor may list, or nil for every park.
func ParkScope(actor Actor) []uuid.UUID {
	if actor.Role == RoleSuperAdmin {
		return nil
	}
	scope := make([]uuid.UUID, len(actor.AssignedParks))
	copy(scope, actor.AssignedParks)
	return scope
}
