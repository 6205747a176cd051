package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-admin/internal/domain"
	apperrors "github.com/spec-kit/ticket-admin/pkg/util"
)

// RequireActor ensures an actor has been resolved.
func RequireActor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ActorFromContext(c) == nil {
			return apperrors.NewUnauthenticated("authentication required")
		}
		return c.Next()
	}
}

// RequireDecision gates a route group on a Guard decision. Services repeat the check;
// this only rejects early.
func RequireDecision(allowed func(*domain.Actor) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFromContext(c)
		if actor == nil {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if !allowed(actor) {
			return apperrors.NewPermissionDenied("insufficient permissions")
		}
		return c.Next()
	}
}

// RequirePermission gates a route group on one permission.
func RequirePermission(perm domain.Permission) fiber.Handler {
	return RequireDecision(func(actor *domain.Actor) bool {
		return HasPermission(actor, perm)
	})
}
