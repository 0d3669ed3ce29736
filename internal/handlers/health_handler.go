package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// PingFunc checks that a backing dependency is reachable.
type PingFunc func(ctx context.Context) error

// HealthHandler serves the liveness and readiness endpoints.
type HealthHandler struct {
	ping   PingFunc
	logger *logrus.Logger
	now    func() time.Time
}

// NewHealthHandler creates a HealthHandler. A nil ping means there is no
// database to check.
func NewHealthHandler(ping PingFunc, logger *logrus.Logger) *HealthHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &HealthHandler{ping: ping, logger: logger, now: time.Now}
}

// RegisterRoutes registers /health on app and /test on api.
func (h *HealthHandler) RegisterRoutes(app fiber.Router, api fiber.Router) {
	app.Get("/health", h.HandleHealth)
	api.Get("/test", h.HandleTest)
}

// HandleHealth reports whether the database answers.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	status := fiber.StatusOK
	body := fiber.Map{
		"status":   "healthy",
		"database": "up",
		"time":     h.now().UTC().Format(time.RFC3339),
	}

	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			h.logger.WithError(err).Warn("Database health check failed")
			status = fiber.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["database"] = "down"
		}
	}

	return c.Status(status).JSON(body)
}

// HandleTest is a liveness probe that touches nothing but the process.
func (h *HealthHandler) HandleTest(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":   "API is running",
		"timestamp": h.now().UTC(),
	})
}
