package http

import (
	"encoding/json"

	"github.com/NeuralTrust/MediaGuard/pkg/app/moderation"
	domain "github.com/NeuralTrust/MediaGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/MediaGuard/pkg/handlers/http/request"
	"github.com/NeuralTrust/MediaGuard/pkg/handlers/http/response"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type filterImageHandler struct {
	logger *logrus.Logger
	filter moderation.Filter
}

func NewFilterImageHandler(logger *logrus.Logger, filter moderation.Filter) Handler {
	return &filterImageHandler{
		logger: logger,
		filter: filter,
	}
}

// Handle @Summary Moderate an image
// @Description Fetches the image and decides whether it matches any of the caller's filters
// @Tags Moderation
// @Accept json
// @Produce json
// @Param request body request.FilterImageRequest true "Image and filters"
// @Success 200 {object} response.FilterResponse "Moderation decision"
// @Failure 400 {object} response.ErrorResponse "Missing image_url or user_filters"
// @Failure 500 {object} response.ErrorResponse "Processing failure, fails open"
// @Router /filter-image [post]
func (h *filterImageHandler) Handle(c *fiber.Ctx) error {
	var req request.FilterImageRequest
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return invalidBody(c, h.logger, domain.MediaTypeImage, err)
		}
	}

	if req.ImageURL == "" {
		return handleError(c, h.logger, domain.MediaTypeImage, domain.ErrNoImageURL)
	}
	labels, settings, err := req.Filters()
	if err != nil {
		return handleError(c, h.logger, domain.MediaTypeImage, err)
	}

	decision, err := h.filter.FilterImage(c.UserContext(), moderation.ImageRequest{
		RequestID: requestID(c),
		ImageURL:  req.ImageURL,
		Labels:    labels,
		Settings:  settings,
	})
	if err != nil {
		return handleError(c, h.logger, domain.MediaTypeImage, err)
	}
	return c.Status(fiber.StatusOK).JSON(response.NewFilterResponse(decision))
}
