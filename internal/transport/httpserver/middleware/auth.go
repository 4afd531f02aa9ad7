package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"guide-validator/internal/transport/httpserver/dto"
)

// RequireAdminToken guards the admin surface with a static bearer token.
// The token stands in for the platform's session/role system, which lives
// outside this service. With no token configured the admin surface is off.
func RequireAdminToken(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: "admin API is not configured",
				Code:  "ADMIN_DISABLED",
			})
		}

		presented := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "invalid or missing admin token",
				Code:  "UNAUTHORIZED",
			})
		}

		return c.Next()
	}
}
