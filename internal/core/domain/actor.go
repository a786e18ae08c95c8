package domain

// RoleCode identifies a role in the system catalog. Codes are fixed; new
// roles require a catalog change, not a data migration.
type RoleCode string

const (
	// RoleAdmin is implicitly authorized for every action on every resource.
	RoleAdmin RoleCode = "ADMIN_HE_THONG"
	// RoleEventOrganizer creates events, room requests, and invitations on
	// behalf of a hosting unit.
	RoleEventOrganizer RoleCode = "CB_TO_CHUC_SU_KIEN"
	// RoleBoardApprover is the institution board (BGH) role that approves or
	// rejects events and event-cancellation requests.
	RoleBoardApprover RoleCode = "BGH_DUYET_SK_TRUONG"
	// RoleFacilityManager (CSVC) processes room requests and room-change
	// requests and administers rooms, equipment, and room types.
	RoleFacilityManager RoleCode = "QUAN_LY_CSVC"
	// RoleUnitHead manages a single organizational unit; assignments carry
	// the unit they administer.
	RoleUnitHead RoleCode = "TRUONG_DON_VI"
	// RoleLecturer and RoleStudent are participant roles: they respond to
	// invitations and rate completed events.
	RoleLecturer RoleCode = "GIANG_VIEN"
	RoleStudent  RoleCode = "SINH_VIEN"
)

// unitScopedRoles lists the roles whose assignments are bound to the
// organizational unit they act for. All other roles are global.
var unitScopedRoles = map[RoleCode]bool{
	RoleEventOrganizer: true,
	RoleUnitHead:       true,
}

// KnownRoles enumerates the role catalog.
func KnownRoles() []RoleCode {
	return []RoleCode{
		RoleAdmin,
		RoleEventOrganizer,
		RoleBoardApprover,
		RoleFacilityManager,
		RoleUnitHead,
		RoleLecturer,
		RoleStudent,
	}
}

// IsUnitScoped reports whether assignments of the role are bound to an
// executing organizational unit.
func (r RoleCode) IsUnitScoped() bool {
	return unitScopedRoles[r]
}

// RoleAssignment binds a role to an actor, optionally scoped to the
// organizational unit the actor exercises the role for.
type RoleAssignment struct {
	Role            RoleCode
	ExecutingUnitID *string
}

// Actor is the authenticated caller of every permission and transition
// operation. It is always passed explicitly; there is no ambient identity.
type Actor struct {
	ID          string
	DisplayName string
	Assignments []RoleAssignment
}

// HasRole reports whether the actor holds the role under any scope.
func (a Actor) HasRole(code RoleCode) bool {
	for _, as := range a.Assignments {
		if as.Role == code {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the actor holds the system administrator role.
func (a Actor) IsAdmin() bool {
	return a.HasRole(RoleAdmin)
}

// ManagedUnit returns the executing unit of the first assignment matching
// the role code, or false when the actor has no such scoped assignment.
func (a Actor) ManagedUnit(code RoleCode) (string, bool) {
	for _, as := range a.Assignments {
		if as.Role == code && as.ExecutingUnitID != nil && *as.ExecutingUnitID != "" {
			return *as.ExecutingUnitID, true
		}
	}
	return "", false
}
