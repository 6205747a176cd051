package events

import (
	"time"

	"github.com/spec-kit/ticket-admin/internal/domain"
)

// EventType mirrors the activity action that produced the event.
type EventType string

const (
	EventTicketCreated   EventType = domain.ActionTicketCreated
	EventTicketUpdated   EventType = domain.ActionTicketUpdated
	EventTicketDeleted   EventType = domain.ActionTicketDeleted
	EventUserRoleChanged EventType = domain.ActionUserRoleChanged
	EventUserActivated   EventType = domain.ActionUserActivated
	EventUserDeactivated EventType = domain.ActionUserDeactivated
)

// AllEventTypes lists every type a subscriber can register for.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketUpdated,
	EventTicketDeleted,
	EventUserRoleChanged,
	EventUserActivated,
	EventUserDeactivated,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event is emitted once the mutation and its activity entry have committed.
type Event struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Actor      Actor          `json:"actor"`
	Timestamp  time.Time      `json:"timestamp"`
	Payload    map[string]any `json:"payload"`
}

// FromActivity builds the event for a committed activity entry. The event id is the entry id.
func FromActivity(entry *domain.ActivityLog, actor *domain.Actor) Event {
	event := Event{
		ID:         entry.ID,
		Type:       EventType(entry.Action),
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Actor:      Actor{UserID: entry.UserID},
		Timestamp:  entry.CreatedAt,
		Payload:    entry.Metadata,
	}
	if actor != nil {
		event.Actor.Role = actor.Role
	}
	return event
}
