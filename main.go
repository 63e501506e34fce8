package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"estoque/internal/config"
	"estoque/internal/database"
	"estoque/internal/events"
	"estoque/internal/handlers"
	"estoque/internal/logger"
	"estoque/internal/middleware"
	"estoque/internal/repositories"
	"estoque/internal/security"
	"estoque/internal/services"
	"estoque/pkg/rabbitmq"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Env, cfg.LogLevel, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	slog.SetDefault(appLogger)

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("Server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	appLogger.Info("Server gracefully stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Database ---
	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := database.Migrate(db, cfg.Database, logger); err != nil {
		return err
	}

	// --- Domain events ---
	var publisher events.Publisher
	if cfg.RabbitMQ.Enabled() {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQ.URL,
			Exchange: cfg.RabbitMQ.Exchange,
			Queue:    cfg.RabbitMQ.Queue,
		}, logger)
		if err != nil {
			return err
		}
		defer mqClient.Close()

		if err := mqClient.Consume(events.LoggingHandler(logger)); err != nil {
			return err
		}
		publisher = mqClient
	} else {
		logger.Info("RABBITMQ_URL not set, domain events disabled")
	}

	app, err := newApp(db, cfg, publisher, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server", slog.String("port", cfg.Port), slog.String("env", cfg.Env))
		return app.Listen(cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})
	return g.Wait()
}

// newApp wires repositories, services and handlers into a Fiber app. A nil
// publisher disables domain events.
func newApp(db *gorm.DB, cfg *config.Config, publisher events.Publisher, logger *slog.Logger) (*fiber.App, error) {
	issuer, err := security.NewJWTIssuer(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	emitter := events.NewEmitter(publisher, logger)

	// --- Services ---
	userService := services.NewUserService(repositories.NewGORMUserRepository(db), hasher, emitter, logger)
	authService := services.NewAuthService(userService, hasher, issuer, logger)
	productService := services.NewProductService(repositories.NewGORMProductRepository(db), userService, emitter, logger)

	app := fiber.New(fiber.Config{AppName: "estoque"})

	// --- Middleware ---
	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	// --- Health and metrics ---
	app.Get("/health", healthHandler(db, publisher != nil))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	guard := middleware.AuthRequired(issuer, logger)
	handlers.NewAuthHandler(authService, logger).RegisterRoutes(apiV1, guard)
	handlers.NewUserHandler(userService, logger).RegisterRoutes(apiV1, guard)
	handlers.NewProductHandler(productService, logger).RegisterRoutes(apiV1, guard)

	return app, nil
}

func healthHandler(db *gorm.DB, eventsEnabled bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, dbStatus, code := "healthy", "up", fiber.StatusOK
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			status, dbStatus, code = "unhealthy", "down", fiber.StatusServiceUnavailable
		}

		eventsStatus := "disabled"
		if eventsEnabled {
			eventsStatus = "enabled"
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().UTC().Format(time.RFC3339),
			"database": dbStatus,
			"events":   eventsStatus,
		})
	}
}
