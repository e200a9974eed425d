package middleware

import (
	"context"

	"github.com/NeuralTrust/MediaGuard/pkg/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxRequestIDLength = 128

type requestIDMiddleware struct{}

func NewRequestIDMiddleware() Middleware {
	return &requestIDMiddleware{}
}

// Middleware keeps an inbound X-Request-Id or mints a new one, and echoes it
// on the response.
func (m *requestIDMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(common.RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.New().String()
		}
		c.Locals(common.RequestIDContextKey, id)
		c.SetUserContext(context.WithValue(c.UserContext(), common.RequestIDContextKey, id))
		c.Set(common.RequestIDHeader, id)
		return c.Next()
	}
}

// RequestID returns the id assigned by the request-id middleware, or an
// empty string.
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(common.RequestIDContextKey).(string) //nolint:errcheck
	return id
}
