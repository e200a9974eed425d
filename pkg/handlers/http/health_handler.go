package http

import (
	"github.com/NeuralTrust/MediaGuard/pkg/app/moderation"
	"github.com/NeuralTrust/MediaGuard/pkg/handlers/http/response"
	"github.com/gofiber/fiber/v2"
)

const healthStatusRunning = "running"

type healthHandler struct {
	filter moderation.Filter
}

func NewHealthHandler(filter moderation.Filter) Handler {
	return &healthHandler{filter: filter}
}

// Handle @Summary Liveness probe
// @Description Reports that the service is running and where inference executes
// @Tags Health
// @Produce json
// @Success 200 {object} response.HealthResponse "Service status"
// @Router /health [get]
func (h *healthHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(response.HealthResponse{
		Status: healthStatusRunning,
		Device: h.filter.Device(),
	})
}
