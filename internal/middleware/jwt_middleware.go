package middleware

import (
	"strings"

	"vendorapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Locals keys populated by AuthRequired.
const (
	UserIDKey = "user_id"
	EmailKey  = "email"
)

// TokenValidator is the capability AuthRequired needs from the auth service.
type TokenValidator interface {
	ValidateToken(tokenString string) (*services.Claims, error)
}

// AuthRequired rejects the request with 401 unless it carries a valid
// "Authorization: Bearer <token>" header.
func AuthRequired(tokens TokenValidator, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required.")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'.")
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("token rejected")
			return unauthorized(c, "Invalid or expired token.")
		}

		c.Locals(UserIDKey, claims.UserID)
		c.Locals(EmailKey, claims.Email)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status":  "fail",
		"message": message,
	})
}
