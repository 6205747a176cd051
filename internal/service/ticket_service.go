package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-admin/internal/audit"
	"github.com/spec-kit/ticket-admin/internal/auth"
	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/events"
	"github.com/spec-kit/ticket-admin/internal/repository"
	apperrors "github.com/spec-kit/ticket-admin/pkg/util"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	store    repository.Transactor
	audit    *audit.Logger
	events   publisher
	now      func() time.Time
	maxLimit int
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store      repository.Transactor
	Audit      *audit.Logger
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	MaxLimit   int
	// Clock defaults to time.Now in UTC.
	Clock func() time.Time
}

// TicketInput is the validated payload for ticket creation.
type TicketInput struct {
	Title         string                `json:"title" validate:"required,min=5,max=200"`
	Description   string                `json:"description" validate:"required,min=10"`
	CustomerName  string                `json:"customerName" validate:"required,min=2,max=120"`
	CustomerEmail string                `json:"customerEmail" validate:"required,email"`
	Category      domain.TicketCategory `json:"category" validate:"required,oneof=GENERAL TECHNICAL BILLING FEATURE_REQUEST BUG_REPORT"`
	Priority      domain.TicketPriority `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH URGENT"`
	AssignedToID  *string               `json:"assignedToId" validate:"omitempty,uuid"`
}

// TicketUpdateInput replaces every editable field. A nil AssignedToID unassigns.
type TicketUpdateInput struct {
	TicketInput
	Status domain.TicketStatus `json:"status" validate:"required,oneof=OPEN IN_PROGRESS WAITING_ON_CUSTOMER RESOLVED CLOSED"`
}

// TicketQuery describes a ticket listing request.
type TicketQuery struct {
	Page         int                    `json:"page" validate:"gte=0"`
	Limit        int                    `json:"limit" validate:"gte=0"`
	Status       *domain.TicketStatus   `json:"status" validate:"omitempty,oneof=OPEN IN_PROGRESS WAITING_ON_CUSTOMER RESOLVED CLOSED"`
	Priority     *domain.TicketPriority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Category     *domain.TicketCategory `json:"category" validate:"omitempty,oneof=GENERAL TECHNICAL BILLING FEATURE_REQUEST BUG_REPORT"`
	AssignedToID *string                `json:"assignedToId" validate:"omitempty,uuid"`
	Search       string                 `json:"search" validate:"max=200"`
}

// TicketView is a ticket with the caller's derived capabilities.
type TicketView struct {
	Ticket    *domain.Ticket
	CanEdit   bool
	CanAssign bool
}

// TicketPage is one page of tickets.
type TicketPage struct {
	Tickets    []domain.Ticket
	Pagination domain.Pagination
	CanCreate  bool
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	clock := deps.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &TicketService{
		store:    deps.Store,
		audit:    deps.Audit,
		events:   publisher{dispatcher: deps.Dispatcher, logger: deps.Logger},
		now:      clock,
		maxLimit: clampLimit(deps.MaxLimit),
	}
}

// CreateTicket opens a ticket on behalf of actor and records TICKET_CREATED.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.Actor, input TicketInput) (*domain.Ticket, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	input = normalizeTicketInput(input)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if !auth.HasPermission(actor, domain.PermissionCreateTicket) {
		return nil, apperrors.NewPermissionDenied("not allowed to create tickets")
	}
	if input.AssignedToID != nil && !auth.CanAssignTicket(actor) {
		return nil, apperrors.NewPermissionDenied("not allowed to assign tickets")
	}

	ticket := &domain.Ticket{
		Title:         input.Title,
		Description:   input.Description,
		Status:        domain.TicketStatusOpen,
		Priority:      input.Priority,
		Category:      input.Category,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CreatedByID:   actor.ID,
		AssignedToID:  input.AssignedToID,
	}

	var entry *domain.ActivityLog
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		if err := ensureAssignee(ctx, tx, ticket.AssignedToID); err != nil {
			return err
		}
		if err := tx.Tickets().Create(ctx, ticket); err != nil {
			return err
		}
		var err error
		entry, err = s.audit.Bind(tx.ActivityLogs()).Record(ctx, audit.Entry{
			UserID:     actor.ID,
			Action:     domain.ActionTicketCreated,
			EntityType: domain.EntityTypeTicket,
			EntityID:   ticket.ID,
			Metadata: map[string]any{
				"ticketNumber": ticket.TicketNumber,
				"title":        ticket.Title,
				"priority":     string(ticket.Priority),
			},
		})
		return err
	})
	if err != nil {
		return nil, mapStoreError(err, "ticket")
	}
	s.events.publish(ctx, entry, actor)
	return ticket, nil
}

// GetTicket returns a ticket and what the actor may do with it.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.Actor, id string) (*TicketView, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	ticket, err := s.store.Tickets().GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "ticket")
	}
	if !auth.CanAccessTicket(actor, ticket) {
		return nil, apperrors.NewPermissionDenied("not allowed to view this ticket")
	}
	return &TicketView{
		Ticket:    ticket,
		CanEdit:   auth.CanEditTicket(actor, ticket),
		CanAssign: auth.CanAssignTicket(actor),
	}, nil
}

// ListTickets pages through tickets newest first.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.Actor, query TicketQuery) (*TicketPage, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	query.Search = strings.TrimSpace(query.Search)
	if err := validateInput(query); err != nil {
		return nil, err
	}
	if !auth.CanAccessTicket(actor, nil) {
		return nil, apperrors.NewPermissionDenied("not allowed to view tickets")
	}

	page, limit := domain.NormalizePage(query.Page, query.Limit, DefaultTicketPageSize, s.maxLimit)
	filter := repository.TicketFilter{
		Status:       query.Status,
		Priority:     query.Priority,
		Category:     query.Category,
		AssignedToID: query.AssignedToID,
		Search:       query.Search,
	}
	total, err := s.store.Tickets().Count(ctx, filter)
	if err != nil {
		return nil, mapStoreError(err, "ticket")
	}
	pagination := domain.NewPagination(page, limit, total)
	filter.Limit = limit
	filter.Offset = pagination.Offset()

	tickets, err := s.store.Tickets().List(ctx, filter)
	if err != nil {
		return nil, mapStoreError(err, "ticket")
	}
	return &TicketPage{
		Tickets:    tickets,
		Pagination: pagination,
		CanCreate:  auth.CanCreateTicket(actor),
	}, nil
}

// UpdateTicket replaces the editable fields and records TICKET_UPDATED. Entering RESOLVED
// or CLOSED stamps resolvedAt once; leaving those states keeps it.
func (s *TicketService) UpdateTicket(ctx context.Context, actor *domain.Actor, id string, input TicketUpdateInput) (*domain.Ticket, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	input.TicketInput = normalizeTicketInput(input.TicketInput)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var (
		ticket *domain.Ticket
		entry  *domain.ActivityLog
	)
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		var err error
		ticket, err = tx.Tickets().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !auth.CanEditTicket(actor, ticket) {
			return apperrors.NewPermissionDenied("not allowed to edit tickets")
		}
		if !sameAssignee(ticket.AssignedToID, input.AssignedToID) {
			if !auth.CanAssignTicket(actor) {
				return apperrors.NewPermissionDenied("not allowed to assign tickets")
			}
			if err := ensureAssignee(ctx, tx, input.AssignedToID); err != nil {
				return err
			}
		}

		oldStatus, oldPriority := ticket.Status, ticket.Priority
		ticket.Title = input.Title
		ticket.Description = input.Description
		ticket.CustomerName = input.CustomerName
		ticket.CustomerEmail = input.CustomerEmail
		ticket.Category = input.Category
		ticket.Priority = input.Priority
		ticket.Status = input.Status
		ticket.AssignedToID = input.AssignedToID
		if ticket.Status.Terminal() && ticket.ResolvedAt == nil {
			resolvedAt := s.now()
			ticket.ResolvedAt = &resolvedAt
		}
		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return err
		}

		entry, err = s.audit.Bind(tx.ActivityLogs()).Record(ctx, audit.Entry{
			UserID:     actor.ID,
			Action:     domain.ActionTicketUpdated,
			EntityType: domain.EntityTypeTicket,
			EntityID:   ticket.ID,
			Metadata: map[string]any{
				"ticketNumber": ticket.TicketNumber,
				"status":       []string{string(oldStatus), string(ticket.Status)},
				"priority":     []string{string(oldPriority), string(ticket.Priority)},
			},
		})
		return err
	})
	if err != nil {
		return nil, mapStoreError(err, "ticket")
	}
	s.events.publish(ctx, entry, actor)
	return ticket, nil
}

// DeleteTicket removes a ticket and records TICKET_DELETED.
func (s *TicketService) DeleteTicket(ctx context.Context, actor *domain.Actor, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !auth.CanDeleteTicket(actor) {
		return apperrors.NewPermissionDenied("not allowed to delete tickets")
	}

	var entry *domain.ActivityLog
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		ticket, err := tx.Tickets().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Tickets().Delete(ctx, ticket.ID); err != nil {
			return err
		}
		entry, err = s.audit.Bind(tx.ActivityLogs()).Record(ctx, audit.Entry{
			UserID:     actor.ID,
			Action:     domain.ActionTicketDeleted,
			EntityType: domain.EntityTypeTicket,
			EntityID:   ticket.ID,
			Metadata: map[string]any{
				"ticketNumber": ticket.TicketNumber,
				"title":        ticket.Title,
			},
		})
		return err
	})
	if err != nil {
		return mapStoreError(err, "ticket")
	}
	s.events.publish(ctx, entry, actor)
	return nil
}

func normalizeTicketInput(input TicketInput) TicketInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	input.CustomerEmail = strings.TrimSpace(input.CustomerEmail)
	if input.AssignedToID != nil && strings.TrimSpace(*input.AssignedToID) == "" {
		input.AssignedToID = nil
	}
	return input
}

// ensureAssignee rejects assignment to an unknown account.
func ensureAssignee(ctx context.Context, tx repository.Store, assigneeID *string) error {
	if assigneeID == nil {
		return nil
	}
	if _, err := tx.Users().GetByID(ctx, *assigneeID); err != nil {
		if mapped := mapStoreError(err, "user"); apperrors.HasCode(mapped, apperrors.CodeNotFound) {
			return apperrors.NewValidationError("invalid input", map[string]any{"assignedToId": "must reference an existing user"})
		}
		return err
	}
	return nil
}

func sameAssignee(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
