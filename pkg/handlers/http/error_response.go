package http

import (
	"errors"

	"github.com/NeuralTrust/MediaGuard/pkg/common"
	domain "github.com/NeuralTrust/MediaGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/MediaGuard/pkg/handlers/http/response"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const ErrInvalidRequestBody = "Invalid request body"

// handleError is the only place pipeline errors become HTTP responses.
// Caller mistakes are 400 with the message as is. Anything else is a
// fail-open 500.
func handleError(c *fiber.Ctx, logger *logrus.Logger, mediaType domain.MediaType, err error) error {
	entry := logger.WithError(err).WithFields(logrus.Fields{
		"request_id": requestID(c),
		"media_type": mediaType,
	})

	if errors.Is(err, domain.ErrInvalidInput) {
		entry.Debug("rejected filter request")
		msg := err.Error()
		var inputErr *domain.InputError
		if errors.As(err, &inputErr) {
			msg = inputErr.Msg
		}
		return c.Status(fiber.StatusBadRequest).JSON(response.ErrorResponse{Error: msg})
	}

	entry.Error("filter request failed")
	shouldBlock := false
	body := response.ErrorResponse{
		Error:       err.Error(),
		ShouldBlock: &shouldBlock,
	}
	if mediaType == domain.MediaTypeVideo {
		body.Type = string(domain.MediaTypeVideo)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(body)
}

func invalidBody(c *fiber.Ctx, logger *logrus.Logger, mediaType domain.MediaType, err error) error {
	logger.WithError(err).WithField("request_id", requestID(c)).Debug("failed to parse request body")
	return handleError(c, logger, mediaType, domain.NewInputError(ErrInvalidRequestBody))
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(common.RequestIDContextKey).(string) //nolint:errcheck
	return id
}
