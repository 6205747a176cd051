package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen              TicketStatus = "OPEN"
	TicketStatusInProgress        TicketStatus = "IN_PROGRESS"
	TicketStatusWaitingOnCustomer TicketStatus = "WAITING_ON_CUSTOMER"
	TicketStatusResolved          TicketStatus = "RESOLVED"
	TicketStatusClosed            TicketStatus = "CLOSED"
)

// TicketStatuses lists every status.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusWaitingOnCustomer,
	TicketStatusResolved,
	TicketStatusClosed,
}

// Terminal reports whether the status marks the ticket as resolved.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// TicketPriorities lists every priority.
var TicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityUrgent,
}

// TicketCategory classifies a support request.
type TicketCategory string

const (
	TicketCategoryGeneral        TicketCategory = "GENERAL"
	TicketCategoryTechnical      TicketCategory = "TECHNICAL"
	TicketCategoryBilling        TicketCategory = "BILLING"
	TicketCategoryFeatureRequest TicketCategory = "FEATURE_REQUEST"
	TicketCategoryBugReport      TicketCategory = "BUG_REPORT"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID            string
	TicketNumber  int
	Title         string
	Description   string
	Status        TicketStatus
	Priority      TicketPriority
	Category      TicketCategory
	CustomerName  string
	CustomerEmail string
	CreatedByID   string
	AssignedToID  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	// ResolvedAt is stamped the first time the ticket enters RESOLVED or CLOSED and is never cleared.
	ResolvedAt *time.Time
}
