package domain

import "github.com/hashicorp/go-set/v2"

// Role enumerates account roles. The set is closed.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleMember  Role = "MEMBER"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleManager, RoleMember}

// Valid reports whether r belongs to the role enum.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

// Permission is a named capability granted to roles.
type Permission string

const (
	PermissionManageUsers      Permission = "manage_users"
	PermissionManageRoles      Permission = "manage_roles"
	PermissionViewAllTickets   Permission = "view_all_tickets"
	PermissionCreateTicket     Permission = "create_ticket"
	PermissionEditTicket       Permission = "edit_ticket"
	PermissionDeleteTicket     Permission = "delete_ticket"
	PermissionAssignTicket     Permission = "assign_ticket"
	PermissionViewAnalytics    Permission = "view_analytics"
	PermissionViewActivityLogs Permission = "view_activity_logs"
	PermissionManageSettings   Permission = "manage_settings"
)

// Permissions lists the full permission vocabulary.
var Permissions = []Permission{
	PermissionManageUsers,
	PermissionManageRoles,
	PermissionViewAllTickets,
	PermissionCreateTicket,
	PermissionEditTicket,
	PermissionDeleteTicket,
	PermissionAssignTicket,
	PermissionViewAnalytics,
	PermissionViewActivityLogs,
	PermissionManageSettings,
}

// rolePermissions is built once and never mutated; PermissionsOf hands out copies.
var rolePermissions = map[Role]*set.Set[Permission]{
	RoleAdmin: set.From(Permissions),
	RoleManager: set.From([]Permission{
		PermissionViewAllTickets,
		PermissionCreateTicket,
		PermissionEditTicket,
		PermissionAssignTicket,
		PermissionViewAnalytics,
	}),
	// Members work tickets through application-level visibility, not grants.
	RoleMember: set.New[Permission](0),
}

// PermissionsOf returns the permission set of a role. Unknown roles get an empty set.
func PermissionsOf(r Role) *set.Set[Permission] {
	perms, ok := rolePermissions[r]
	if !ok {
		return set.New[Permission](0)
	}
	return perms.Copy()
}

// HasPermission reports whether the role grants p.
func (r Role) HasPermission(p Permission) bool {
	perms, ok := rolePermissions[r]
	if !ok {
		return false
	}
	return perms.Contains(p)
}
