package entity

import "strings"

type Role string

const (
	RoleSuperAdmin      Role = "SUPER_ADMIN"
	RoleAdmin           Role = "ADMIN"
	RolePropertyManager Role = "PROPERTY_MANAGER"
	RoleAccountant      Role = "ACCOUNTANT"
	RoleLeasingAgent    Role = "LEASING_AGENT"
	RoleViewer          Role = "VIEWER"
)

var allRoles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RolePropertyManager,
	RoleAccountant,
	RoleLeasingAgent,
	RoleViewer,
}

// assignable lists, per actor role, the roles that actor may grant.
var assignable = map[Role]map[Role]bool{
	RoleSuperAdmin:      setOf(allRoles...),
	RoleAdmin:           setOf(nonSuperAdminRoles()...),
	RolePropertyManager: setOf(nonSuperAdminRoles()...),
	RoleAccountant:      setOf(nonSuperAdminRoles()...),
	RoleLeasingAgent:    setOf(nonSuperAdminRoles()...),
	RoleViewer:          setOf(nonSuperAdminRoles()...),
}

func nonSuperAdminRoles() []Role {
	out := make([]Role, 0, len(allRoles)-1)
	for _, r := range allRoles {
		if r != RoleSuperAdmin {
			out = append(out, r)
		}
	}
	return out
}

func setOf(roles ...Role) map[Role]bool {
	m := make(map[Role]bool, len(roles))
	for _, r := range roles {
		m[r] = true
	}
	return m
}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

func (r Role) Valid() bool {
	for _, known := range allRoles {
		if r == known {
			return true
		}
	}
	return false
}

// CanAssign reports whether a user holding actor may grant target.
func CanAssign(actor, target Role) bool {
	return assignable[actor][target]
}

func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}
