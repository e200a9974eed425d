package router

import (
	"errors"

	"github.com/NeuralTrust/MediaGuard/pkg/common"
	handlers "github.com/NeuralTrust/MediaGuard/pkg/handlers/http"
	"github.com/NeuralTrust/MediaGuard/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

var (
	ErrInvalidHandlerTransport = errors.New("invalid handler transport")
)

const (
	SwaggerSpecPath = "/swagger.json"
	SwaggerSpecFile = "./docs/swagger.json"
)

type moderationRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    *handlers.HandlerTransport
}

func NewModerationRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport *handlers.HandlerTransport,
) ServerRouter {
	return &moderationRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

func (r *moderationRouter) BuildRoutes(router *fiber.App) error {
	h := r.handlerTransport
	if h == nil || h.FilterImageHandler == nil || h.FilterVideoHandler == nil ||
		h.HealthHandler == nil || h.GetVersionHandler == nil {
		return ErrInvalidHandlerTransport
	}
	m := r.middlewareTransport

	for _, mw := range []middleware.Middleware{
		m.PanicRecoverMiddleware,
		m.RequestIDMiddleware,
		m.CORSMiddleware,
		m.MetricsMiddleware,
	} {
		if mw != nil {
			router.Use(mw.Middleware())
		}
	}

	router.Static(SwaggerSpecPath, SwaggerSpecFile)
	router.Get("/docs/*", swagger.New(swagger.Config{
		URL: SwaggerSpecPath,
	}))

	router.Get(common.HealthPath, h.HealthHandler.Handle)
	router.Get(common.VersionPath, h.GetVersionHandler.Handle)

	filters := router.Group("")
	if m.AuthMiddleware != nil {
		filters.Post(common.FilterImagePath, m.AuthMiddleware.Middleware(), h.FilterImageHandler.Handle)
		filters.Post(common.FilterVideoPath, m.AuthMiddleware.Middleware(), h.FilterVideoHandler.Handle)
		return nil
	}
	filters.Post(common.FilterImagePath, h.FilterImageHandler.Handle)
	filters.Post(common.FilterVideoPath, h.FilterVideoHandler.Handle)
	return nil
}
