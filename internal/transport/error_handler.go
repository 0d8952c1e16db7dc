package transport

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sfgs/mail-dispatch/internal/observability"
	"go.uber.org/zap"
)

// CorrelationMiddleware propagates the caller's X-Request-Id into the request
// context so downstream logging can tag entries with it.
func CorrelationMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := strings.TrimSpace(c.Get(fiber.HeaderXRequestID)); id != "" {
			c.SetUserContext(observability.WithCorrelationID(c.UserContext(), id))
		}
		return c.Next()
	}
}

func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		observability.WithContextLogger(logger, c.UserContext()).Error("request error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
