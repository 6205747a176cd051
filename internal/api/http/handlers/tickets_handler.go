package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-admin/internal/api/dto"
	"github.com/spec-kit/ticket-admin/internal/auth"
	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/service"
	apperrors "github.com/spec-kit/ticket-admin/pkg/util"
)

// TicketsHandler exposes the ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.TicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), auth.ActorFromContext(c), req.CreateInput())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	query := service.TicketQuery{
		Page:         parseInt(c.Query("page"), 1),
		Limit:        parseInt(c.Query("limit"), 0),
		Status:       optional[domain.TicketStatus](c.Query("status")),
		Priority:     optional[domain.TicketPriority](c.Query("priority")),
		Category:     optional[domain.TicketCategory](c.Query("category")),
		AssignedToID: optional[string](c.Query("assignedToId")),
		Search:       c.Query("search"),
	}
	page, err := h.service.ListTickets(c.UserContext(), auth.ActorFromContext(c), query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketListResponse(page)})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	view, err := h.service.GetTicket(c.UserContext(), auth.ActorFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetailResponse(view)})
}

// UpdateTicket PUT /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.TicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateTicket(c.UserContext(), auth.ActorFromContext(c), c.Params("id"), req.UpdateInput())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// DeleteTicket DELETE /api/tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.service.DeleteTicket(c.UserContext(), auth.ActorFromContext(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
