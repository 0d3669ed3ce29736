package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"shopapi/internal/config"
	"shopapi/internal/handlers"
	"shopapi/internal/logging"
	"shopapi/internal/models"
	"shopapi/internal/repositories"
	"shopapi/internal/server"
	"shopapi/internal/services"
	"shopapi/internal/telemetry"
	"shopapi/pkg/database"
	"shopapi/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	shutdownTracing, err := telemetry.Init(ctx, cfg.AppName, cfg.OTLPEndpoint)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialise tracing")
	}

	app, cleanup, err := newApp(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build application")
	}

	go func() {
		logger.WithField("port", cfg.AppPort).Info("Starting server")
		if err := app.Listen(cfg.AppPort); err != nil {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		logger.WithError(err).Error("Error during Fiber shutdown")
	}
	cleanup()

	flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.WithError(err).Error("Error flushing traces")
	}
	logger.Info("Server gracefully stopped")
}

// newApp wires storage, events, services and handlers. The returned cleanup
// releases the database and broker connections.
func newApp(cfg *config.Config, logger *logrus.Logger) (*fiber.App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var (
		repo repositories.ProductRepository
		ping handlers.PingFunc
	)
	if cfg.DBDriver == config.DriverMemory {
		logger.Warn("Using in-memory product store; data is lost on restart")
		repo = repositories.NewMemoryProductRepository()
	} else {
		db, err := database.Open(database.Config{
			Driver:          cfg.DBDriver,
			DSN:             cfg.DatabaseDSN,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			Verbose:         cfg.IsDevelopment(),
			Tracing:         cfg.OTLPEndpoint != "",
		}, logger, &models.Product{})
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := database.Close(db); err != nil {
				logger.WithError(err).Error("Error closing database")
			}
		})
		repo = repositories.NewGORMProductRepository(db)
		ping = func(ctx context.Context) error { return database.Ping(ctx, db) }
	}

	opts := []services.Option{services.WithLogger(logger)}
	if cfg.RabbitMQURL != "" {
		// Events are best effort, so a missing broker does not stop the API.
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger)
		if err != nil {
			logger.WithError(err).Warn("RabbitMQ unavailable; product events disabled")
		} else {
			closers = append(closers, func() {
				if err := mq.Close(); err != nil {
					logger.WithError(err).Error("Error closing RabbitMQ client")
				}
			})
			opts = append(opts, services.WithPublisher(mq))
			// Consuming our own queue competes with downstream consumers for deliveries.
			if cfg.RabbitMQConsume {
				if err := mq.ConsumeProductEvents(rabbitmq.LogProductEvent(logger)); err != nil {
					logger.WithError(err).Warn("Failed to start RabbitMQ consumer")
				}
			}
		}
	}

	app := server.New(server.Options{
		AppName:        cfg.AppName,
		ProductService: services.NewProductService(repo, opts...),
		Ping:           ping,
		Logger:         logger,
		Tracing:        cfg.OTLPEndpoint != "",
	})
	return app, cleanup, nil
}
