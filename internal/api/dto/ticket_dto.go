package dto

import (
	"time"

	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/service"
)

// TicketRequest is the body of POST /api/tickets and PUT /api/tickets/:id. Status is
// ignored on create.
type TicketRequest struct {
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	CustomerName  string                `json:"customerName"`
	CustomerEmail string                `json:"customerEmail"`
	Category      domain.TicketCategory `json:"category"`
	Priority      domain.TicketPriority `json:"priority"`
	Status        domain.TicketStatus   `json:"status"`
	AssignedToID  *string               `json:"assignedToId"`
}

func (r TicketRequest) CreateInput() service.TicketInput {
	return service.TicketInput{
		Title:         r.Title,
		Description:   r.Description,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		Category:      r.Category,
		Priority:      r.Priority,
		AssignedToID:  r.AssignedToID,
	}
}

func (r TicketRequest) UpdateInput() service.TicketUpdateInput {
	return service.TicketUpdateInput{TicketInput: r.CreateInput(), Status: r.Status}
}

// TicketResponse is the public shape of a ticket.
type TicketResponse struct {
	ID            string                `json:"id"`
	TicketNumber  int                   `json:"ticketNumber"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	Category      domain.TicketCategory `json:"category"`
	CustomerName  string                `json:"customerName"`
	CustomerEmail string                `json:"customerEmail"`
	CreatedByID   string                `json:"createdById"`
	AssignedToID  *string               `json:"assignedToId"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
	ResolvedAt    *time.Time            `json:"resolvedAt"`
}

// TicketDetailResponse adds what the caller may do with the ticket.
type TicketDetailResponse struct {
	Ticket    TicketResponse `json:"ticket"`
	CanEdit   bool           `json:"canEdit"`
	CanAssign bool           `json:"canAssign"`
}

// TicketListResponse is one page of tickets.
type TicketListResponse struct {
	Tickets    []TicketResponse  `json:"tickets"`
	Pagination domain.Pagination `json:"pagination"`
	CanCreate  bool              `json:"canCreate"`
}

func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:            t.ID,
		TicketNumber:  t.TicketNumber,
		Title:         t.Title,
		Description:   t.Description,
		Status:        t.Status,
		Priority:      t.Priority,
		Category:      t.Category,
		CustomerName:  t.CustomerName,
		CustomerEmail: t.CustomerEmail,
		CreatedByID:   t.CreatedByID,
		AssignedToID:  t.AssignedToID,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		ResolvedAt:    t.ResolvedAt,
	}
}

func NewTicketDetailResponse(view *service.TicketView) TicketDetailResponse {
	return TicketDetailResponse{
		Ticket:    NewTicketResponse(view.Ticket),
		CanEdit:   view.CanEdit,
		CanAssign: view.CanAssign,
	}
}

func NewTicketListResponse(page *service.TicketPage) TicketListResponse {
	items := make([]TicketResponse, 0, len(page.Tickets))
	for i := range page.Tickets {
		items = append(items, NewTicketResponse(&page.Tickets[i]))
	}
	return TicketListResponse{Tickets: items, Pagination: page.Pagination, CanCreate: page.CanCreate}
}
