package http

import (
	"encoding/json"
	"mime/multipart"
	"strings"

	"github.com/NeuralTrust/MediaGuard/pkg/app/moderation"
	domain "github.com/NeuralTrust/MediaGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/MediaGuard/pkg/handlers/http/request"
	"github.com/NeuralTrust/MediaGuard/pkg/handlers/http/response"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type filterVideoHandler struct {
	logger *logrus.Logger
	filter moderation.Filter
}

func NewFilterVideoHandler(logger *logrus.Logger, filter moderation.Filter) Handler {
	return &filterVideoHandler{
		logger: logger,
		filter: filter,
	}
}

// Handle @Summary Moderate a video
// @Description Accepts a multipart upload or a video URL, samples frames and decides whether the video matches any of the caller's filters
// @Tags Moderation
// @Accept json,mpfd
// @Produce json
// @Param request body request.FilterVideoRequest false "Video URL and filters"
// @Param file formData file false "Video file"
// @Param user_filters formData string false "JSON encoded filter list"
// @Param filter_settings formData string false "JSON encoded sensitivity map"
// @Success 200 {object} response.FilterResponse "Moderation decision"
// @Failure 400 {object} response.ErrorResponse "Missing video or user_filters"
// @Failure 500 {object} response.ErrorResponse "Processing failure, fails open"
// @Router /filter-video [post]
func (h *filterVideoHandler) Handle(c *fiber.Ctx) error {
	var (
		req moderation.VideoRequest
		err error
	)
	if isMultipart(c) {
		req, err = h.fromMultipart(c)
	} else {
		req, err = h.fromJSON(c)
	}
	if err != nil {
		return handleError(c, h.logger, domain.MediaTypeVideo, err)
	}
	req.RequestID = requestID(c)

	decision, err := h.filter.FilterVideo(c.UserContext(), req)
	if err != nil {
		return handleError(c, h.logger, domain.MediaTypeVideo, err)
	}
	return c.Status(fiber.StatusOK).JSON(response.NewFilterResponse(decision))
}

func (h *filterVideoHandler) fromMultipart(c *fiber.Ctx) (moderation.VideoRequest, error) {
	form, err := c.MultipartForm()
	if err != nil {
		h.logger.WithError(err).Debug("failed to parse multipart form")
		return moderation.VideoRequest{}, domain.NewInputError(ErrInvalidRequestBody)
	}

	var upload *multipart.FileHeader
	if files := form.File[request.VideoFileField]; len(files) > 0 {
		upload = files[0]
	}
	if upload == nil {
		return moderation.VideoRequest{}, domain.ErrNoVideoSource
	}

	labels, settings, err := request.FormFilters(
		formValue(form, request.UserFiltersField),
		formValue(form, request.FilterSettingsField),
	)
	if err != nil {
		return moderation.VideoRequest{}, err
	}
	return moderation.VideoRequest{
		Upload:   upload,
		Labels:   labels,
		Settings: settings,
	}, nil
}

func (h *filterVideoHandler) fromJSON(c *fiber.Ctx) (moderation.VideoRequest, error) {
	var body request.FilterVideoRequest
	if raw := c.Body(); len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			h.logger.WithError(err).Debug("failed to parse video request body")
			return moderation.VideoRequest{}, domain.NewInputError(ErrInvalidRequestBody)
		}
	}
	if body.VideoURL == "" {
		return moderation.VideoRequest{}, domain.ErrNoVideoSource
	}

	labels, settings, err := body.Filters()
	if err != nil {
		return moderation.VideoRequest{}, err
	}
	return moderation.VideoRequest{
		VideoURL: body.VideoURL,
		Labels:   labels,
		Settings: settings,
	}, nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}
