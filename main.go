package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"coffeetrucks/internal/cache"
	"coffeetrucks/internal/config"
	"coffeetrucks/internal/database"
	"coffeetrucks/internal/handlers"
	"coffeetrucks/internal/metrics"
	"coffeetrucks/internal/middleware"
	"coffeetrucks/internal/repositories"
	"coffeetrucks/internal/seed"
	"coffeetrucks/internal/services"
	"coffeetrucks/internal/session"
	"coffeetrucks/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	setupLogging(cfg)

	app, cleanup, err := NewApp(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}
	defer cleanup()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logrus.Infof("Starting server on port %s", cfg.AppPort)
		if err := app.Listen(cfg.AppPort); err != nil {
			logrus.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	logrus.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logrus.Errorf("Error during Fiber shutdown: %v", err)
	}
	logrus.Info("Server gracefully stopped")
}

func setupLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// NewApp wires storage, caches, services and routes. The returned cleanup
// releases connections opened here; on error they are already released.
func NewApp(cfg *config.Config) (*fiber.App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// --- Database ---
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		closers = append(closers, func() { sqlDB.Close() })
	}

	userRepo := repositories.NewGORMUserRepository(db)
	truckRepo := repositories.NewGORMTruckRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)
	imageRepo := repositories.NewGORMImageRepository(db)
	verifier := session.NewVerifier(cfg.SessionSecret)

	// --- View cache ---
	var views cache.Views
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			rdb.Close()
			cleanup()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		closers = append(closers, func() { rdb.Close() })
		views = cache.NewRedisViews(rdb, cfg.ViewCacheTTL)
		logrus.WithField("addr", cfg.RedisAddr).Info("using redis view cache")
	} else {
		views = cache.NewMemoryViews(cfg.ViewCacheTTL)
	}

	// --- Revalidation broadcast ---
	var revalidator cache.Revalidator = views
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.ViewEventsExchange})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { mqClient.Close() })

		err = mqClient.ConsumeRevalidations(func(r rabbitmq.Revalidation) error {
			return views.Revalidate(context.Background(), r.Paths...)
		})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		revalidator = cache.Chain(views, mqClient)
	}

	// --- Seed ---
	if cfg.SeedData {
		if err := seed.Run(context.Background(), userRepo, truckRepo, imageRepo, reviewRepo, verifier); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	truckService := services.NewTruckService(truckRepo, reviewRepo, userRepo, revalidator)
	reviewService := services.NewReviewService(reviewRepo, truckRepo, revalidator)

	// --- Fiber ---
	app := fiber.New()
	app.Use(logger.New())
	app.Use(metrics.Middleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	app.Get("/metrics", metrics.Handler())

	apiV1 := app.Group("/api/v1", middleware.Session(verifier))
	handlers.NewTruckHandler(truckService, views, cfg.RequestTimeout).RegisterRoutes(apiV1)
	handlers.NewReviewHandler(reviewService, cfg.RequestTimeout).RegisterRoutes(apiV1)
	handlers.NewUserHandler(userRepo, cfg.RequestTimeout).RegisterRoutes(apiV1)

	return app, cleanup, nil
}
