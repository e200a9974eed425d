package middleware

import (
	"time"

	"github.com/NeuralTrust/MediaGuard/pkg/common"
	"github.com/NeuralTrust/MediaGuard/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type metricsMiddleware struct {
	logger *logrus.Logger
}

func NewMetricsMiddleware(logger *logrus.Logger) Middleware {
	return &metricsMiddleware{logger: logger}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		startTime := time.Now()
		c.Locals(common.LatencyContextKey, startTime)

		err := c.Next()

		statusCode := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				statusCode = fe.Code
			} else {
				statusCode = fiber.StatusInternalServerError
			}
		}

		// Unmatched paths share one label to keep cardinality bounded.
		endpoint := "unmatched"
		if route := c.Route(); route != nil && route.Path != "/" {
			endpoint = route.Path
		}
		prometheus.RecordRequest(endpoint, statusCode)

		m.logger.WithFields(logrus.Fields{
			"request_id": c.Locals(common.RequestIDContextKey),
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     statusCode,
			"latency_ms": time.Since(startTime).Milliseconds(),
		}).Debug("request completed")

		return err
	}
}
