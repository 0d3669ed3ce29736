package server

import (
	"shopapi/internal/handlers"
	"shopapi/internal/middleware"
	"shopapi/internal/services"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

// Options carries everything the HTTP layer needs.
type Options struct {
	AppName        string
	ProductService *services.ProductService
	Ping           handlers.PingFunc
	Logger         *logrus.Logger
	// Tracing enables the otelfiber middleware.
	Tracing bool
}

// New builds the fiber app with middleware and routes registered.
func New(opts Options) *fiber.App {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	app := fiber.New(fiber.Config{
		AppName:               opts.AppName,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(cors.New())
	if opts.Tracing {
		app.Use(otelfiber.Middleware())
	}
	app.Use(middleware.RequestLogger(logger))

	api := app.Group("/api")

	handlers.NewHealthHandler(opts.Ping, logger).RegisterRoutes(app, api)
	handlers.NewProductHandler(opts.ProductService, logger).RegisterRoutes(api)

	return app
}
