package auth

import "github.com/spec-kit/ticket-admin/internal/domain"

// The functions below are the only place access decisions are made. They are pure
// and treat a nil actor as denied.

// HasPermission reports whether the actor's role grants the permission.
func HasPermission(actor *domain.Actor, permission domain.Permission) bool {
	if actor == nil || actor.Role == "" {
		return false
	}
	return actor.Role.HasPermission(permission)
}

// CanAccessTicket reports read access. Every authenticated actor may read every ticket.
func CanAccessTicket(actor *domain.Actor, _ *domain.Ticket) bool {
	return actor != nil
}

// CanEditTicket reports whether the actor may modify the ticket.
func CanEditTicket(actor *domain.Actor, _ *domain.Ticket) bool {
	return hasRole(actor, domain.RoleAdmin, domain.RoleManager)
}

func CanAssignTicket(actor *domain.Actor) bool {
	return hasRole(actor, domain.RoleAdmin, domain.RoleManager)
}

func CanDeleteTicket(actor *domain.Actor) bool {
	return hasRole(actor, domain.RoleAdmin)
}

// CanCreateTicket backs the canCreate flag returned with ticket listings.
func CanCreateTicket(actor *domain.Actor) bool {
	return hasRole(actor, domain.RoleAdmin, domain.RoleManager)
}

func CanViewAnalytics(actor *domain.Actor) bool {
	return hasRole(actor, domain.RoleAdmin, domain.RoleManager)
}

func CanViewActivityLogs(actor *domain.Actor) bool {
	return hasRole(actor, domain.RoleAdmin)
}

func CanManageUsers(actor *domain.Actor) bool {
	return hasRole(actor, domain.RoleAdmin)
}

func hasRole(actor *domain.Actor, roles ...domain.Role) bool {
	if actor == nil || actor.Role == "" {
		return false
	}
	for _, role := range roles {
		if actor.Role == role {
			return true
		}
	}
	return false
}
