package auth

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-admin/internal/audit"
	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/observability"
	"github.com/spec-kit/ticket-admin/internal/repository"
	apperrors "github.com/spec-kit/ticket-admin/pkg/util"
)

const actorKey = "auth_actor"

// AuthMiddleware validates bearer tokens and resolves the calling actor.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
	cache  ProfileCache
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, cache ProfileCache) *AuthMiddleware {
	if cache == nil {
		cache = noopCache{}
	}
	return &AuthMiddleware{tokens: tokens, users: users, cache: cache}
}

// Handle enforces authentication for protected routes. Deactivated accounts are
// treated as unauthenticated.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthenticated("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthenticated("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthenticated("invalid token")
	}

	ctx := c.UserContext()
	profile, ok := m.cache.Get(ctx, claims.Subject)
	if !ok {
		profile, err = m.users.GetByID(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewUnauthenticated("user not found")
			}
			return apperrors.MapError(err)
		}
		m.cache.Set(ctx, profile)
	}
	if !profile.IsActive {
		return apperrors.NewUnauthenticated("account is deactivated")
	}

	c.Locals(actorKey, domain.ActorFromProfile(profile))
	c.Locals(observability.ActorIDLocal, profile.ID)
	return c.Next()
}

// CaptureRequestInfo stores the client address and user agent for activity entries.
func CaptureRequestInfo() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(audit.WithRequestInfo(c.UserContext(), audit.RequestInfo{
			IPAddress: c.IP(),
			UserAgent: c.Get(fiber.HeaderUserAgent),
		}))
		return c.Next()
	}
}

// ActorFromContext retrieves the authenticated actor, nil when none was resolved.
func ActorFromContext(c *fiber.Ctx) *domain.Actor {
	actor, _ := c.Locals(actorKey).(*domain.Actor)
	return actor
}
