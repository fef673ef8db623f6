// internal/middleware/token_auth.go
package middleware

import (
	"crypto/subtle"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// TokenAuth guards routes with a shared bearer token. The token is read
// from the Authorization header, or from ?token= for EventSource clients
// that cannot set headers. An empty expected token disables the check.
func TokenAuth(expected string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if expected == "" {
			return c.Next()
		}

		token := ""
		if authHeader := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}
		if token == "" {
			token = strings.TrimSpace(c.Query("token"))
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			log.Printf("[TOKEN-AUTH] ❌ REJECTED | IP=%s | Path=%s | Token=%s", c.IP(), c.Path(), mask(token))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized: invalid or missing token",
			})
		}
		return c.Next()
	}
}

func mask(token string) string {
	switch {
	case token == "":
		return "<empty>"
	case len(token) > 6:
		return token[:6] + "..."
	default:
		return "***"
	}
}
