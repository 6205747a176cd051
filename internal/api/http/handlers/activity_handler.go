package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-admin/internal/api/dto"
	"github.com/spec-kit/ticket-admin/internal/auth"
	"github.com/spec-kit/ticket-admin/internal/service"
)

// ActivityHandler exposes the activity trail and dashboard analytics.
type ActivityHandler struct {
	activity  *service.ActivityService
	analytics *service.AnalyticsService
}

func NewActivityHandler(activity *service.ActivityService, analytics *service.AnalyticsService) *ActivityHandler {
	return &ActivityHandler{activity: activity, analytics: analytics}
}

// ListActivity GET /api/activity.
func (h *ActivityHandler) ListActivity(c *fiber.Ctx) error {
	start, err := parseTime("startDate", c.Query("startDate"), false)
	if err != nil {
		return err
	}
	end, err := parseTime("endDate", c.Query("endDate"), true)
	if err != nil {
		return err
	}
	query := service.ActivityQuery{
		Page:      parseInt(c.Query("page"), 1),
		Limit:     parseInt(c.Query("limit"), 0),
		Action:    optional[string](c.Query("action")),
		UserID:    optional[string](c.Query("userId")),
		StartDate: start,
		EndDate:   end,
	}
	page, err := h.activity.ListActivity(c.UserContext(), auth.ActorFromContext(c), query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewActivityListResponse(page)})
}

// ActionStats GET /api/activity/stats/actions.
func (h *ActivityHandler) ActionStats(c *fiber.Ctx) error {
	counts, err := h.activity.ActionStats(c.UserContext(), auth.ActorFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewActionCountResponses(counts)})
}

// UserStats GET /api/activity/stats/users.
func (h *ActivityHandler) UserStats(c *fiber.Ctx) error {
	users, err := h.activity.UserStats(c.UserContext(), auth.ActorFromContext(c), parseInt(c.Query("limit"), 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserActivityResponses(users)})
}

// Overview GET /api/analytics/overview.
func (h *ActivityHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.analytics.Overview(c.UserContext(), auth.ActorFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOverviewResponse(overview)})
}
