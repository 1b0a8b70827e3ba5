package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/transitlink/fleet-backend/internal/services"
	"github.com/transitlink/fleet-backend/pkg/jwt"
)

// PrincipalKey is the fiber.Ctx locals key the authenticated principal
// is stored under.
const PrincipalKey = "principal"

// RequireAuth validates the bearer token and resolves the role-scoped
// identity it names. Tokens whose identity row has since disappeared
// are rejected.
func RequireAuth(secret string, identities *services.IdentityResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing bearer token",
			})
		}

		claims, err := jwt.ValidateToken(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}
		if claims.TokenType != jwt.AccessToken {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Access token required",
			})
		}

		principal, err := identities.ResolveByID(claims.UserID, claims.Role)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "User not found",
			})
		}

		c.Locals(PrincipalKey, principal)
		return c.Next()
	}
}
