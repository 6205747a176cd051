package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-admin/internal/api/dto"
	"github.com/spec-kit/ticket-admin/internal/auth"
	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/service"
	apperrors "github.com/spec-kit/ticket-admin/pkg/util"
)

// UsersHandler exposes user administration and the caller's own profile.
type UsersHandler struct {
	users    *service.UserAdminService
	activity *service.ActivityService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserAdminService, activity *service.ActivityService) *UsersHandler {
	return &UsersHandler{users: users, activity: activity}
}

// Me GET /api/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	actor := auth.ActorFromContext(c)
	user, err := h.users.Profile(c.UserContext(), actor)
	if err != nil {
		return err
	}
	permissions := make([]domain.Permission, 0, len(domain.Permissions))
	for _, p := range domain.Permissions {
		if auth.HasPermission(actor, p) {
			permissions = append(permissions, p)
		}
	}
	return c.JSON(fiber.Map{"data": dto.MeResponse{User: dto.NewUserResponse(user), Permissions: permissions}})
}

// MyActivity GET /api/me/activity.
func (h *UsersHandler) MyActivity(c *fiber.Ctx) error {
	logs, err := h.activity.ListOwnActivity(c.UserContext(), auth.ActorFromContext(c), parseInt(c.Query("limit"), 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewActivityLogResponses(logs)})
}

// ListUsers GET /api/users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	isActive, err := parseBool("isActive", c.Query("isActive"))
	if err != nil {
		return err
	}
	query := service.UserQuery{
		Page:     parseInt(c.Query("page"), 1),
		Limit:    parseInt(c.Query("limit"), 0),
		Role:     optional[domain.Role](c.Query("role")),
		IsActive: isActive,
	}
	page, err := h.users.ListUsers(c.UserContext(), auth.ActorFromContext(c), query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserListResponse(page)})
}

// GetUser GET /api/users/:id.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.UserContext(), auth.ActorFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// UpdateRole PATCH /api/users/:id/role.
func (h *UsersHandler) UpdateRole(c *fiber.Ctx) error {
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.users.UpdateUserRole(c.UserContext(), auth.ActorFromContext(c), c.Params("id"), service.RoleInput{Role: req.Role})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// ToggleActive PATCH /api/users/:id/active.
func (h *UsersHandler) ToggleActive(c *fiber.Ctx) error {
	var req dto.ToggleActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.IsActive == nil {
		return apperrors.NewValidationError("invalid input", map[string]any{"isActive": "is required"})
	}
	user, err := h.users.ToggleUserActive(c.UserContext(), auth.ActorFromContext(c), c.Params("id"), *req.IsActive)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}
