package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/utils"
)

const identityContextKey = "currentIdentity"

// Identity is the authenticated caller, resolved once per request.
type Identity struct {
	UserID uuid.UUID
	Role   models.Role
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// AuthMiddleware validates JWT tokens and loads the caller identity into context.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}
		if err := resolveIdentity(c, secret); err != nil {
			return err
		}
		return c.Next()
	}
}

// OptionalAuth resolves the identity when a token is supplied and lets guests through.
// A token that is present but invalid is still rejected.
func OptionalAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) != "" {
			if err := resolveIdentity(c, secret); err != nil {
				return err
			}
		}
		return c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := GetIdentity(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		if identity.Role != role {
			return fiber.NewError(fiber.StatusForbidden, "forbidden")
		}
		return c.Next()
	}
}

func resolveIdentity(c *fiber.Ctx, secret string) error {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
	}

	userID, role, err := utils.ParseToken(secret, strings.TrimSpace(parts[1]))
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
	}

	c.Locals(identityContextKey, Identity{UserID: userID, Role: role})
	return nil
}

// GetIdentity extracts the authenticated identity from context.
func GetIdentity(c *fiber.Ctx) (Identity, bool) {
	identity, ok := c.Locals(identityContextKey).(Identity)
	return identity, ok
}

// GetCurrentUserID extracts the authenticated user ID from context.
func GetCurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	identity, ok := GetIdentity(c)
	if !ok {
		return uuid.Nil, false
	}
	return identity.UserID, true
}
