package domain

import "time"

// Activity actions recorded by the services.
const (
	ActionTicketCreated   = "TICKET_CREATED"
	ActionTicketUpdated   = "TICKET_UPDATED"
	ActionTicketDeleted   = "TICKET_DELETED"
	ActionUserRoleChanged = "USER_ROLE_CHANGED"
	ActionUserActivated   = "USER_ACTIVATED"
	ActionUserDeactivated = "USER_DEACTIVATED"
)

// Entity types referenced by activity entries.
const (
	EntityTypeTicket      = "Ticket"
	EntityTypeUserProfile = "UserProfile"
)

// Actions lists the action codes emitted by this service.
var Actions = []string{
	ActionTicketCreated,
	ActionTicketUpdated,
	ActionTicketDeleted,
	ActionUserRoleChanged,
	ActionUserActivated,
	ActionUserDeactivated,
}

// ActivityLog is an immutable audit trail entry.
type ActivityLog struct {
	ID         string
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	Metadata   map[string]any
	IPAddress  *string
	UserAgent  *string
	CreatedAt  time.Time
}

// ActivityCount is one bucket of a grouped activity count.
type ActivityCount struct {
	Key   string
	Count int64
}
