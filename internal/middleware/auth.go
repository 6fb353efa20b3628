package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/supplysetu/internal/utils"
)

const (
	userContextKey = "currentUserID"
	roleContextKey = "currentUserRole"
)

// AuthMiddleware validates JWT tokens and loads the authenticated user ID and role into context.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		claims, err := utils.ParseToken(secret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(userContextKey, claims.UserID)
		c.Locals(roleContextKey, claims.Role)
		return c.Next()
	}
}

// RoleLookup resolves the current role of a user.
type RoleLookup func(c *fiber.Ctx, userID string) (string, error)

// RequireRole rejects sessions whose user does not currently hold one of
// roles. The role is looked up on every request because onboarding can
// change it after the token was issued. It must run after AuthMiddleware.
func RequireRole(lookup RoleLookup, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := GetCurrentUserID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		role, err := lookup(c, userID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "unknown user")
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Locals(roleContextKey, role)
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "insufficient role")
	}
}

// GetCurrentUserID extracts the authenticated user ID from context.
func GetCurrentUserID(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals(userContextKey).(string)
	return id, ok && id != ""
}
