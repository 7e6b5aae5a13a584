package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planogram-studio/internal/common/config"
	"planogram-studio/internal/common/logging"
	"planogram-studio/internal/common/middleware"
	"planogram-studio/internal/planogram/builder"
	"planogram-studio/internal/planogram/client"
	"planogram-studio/internal/planogram/handlers"
	"planogram-studio/internal/planogram/service"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"
)

// ============================================================
// Planogram Service
// ============================================================

func main() {
	cfg := config.Load()
	cfg.Port = cfg.PortOr("3001")

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	fetchTimeout := time.Duration(cfg.FetchTimeout) * time.Second
	catalog := client.NewCatalog(cfg.CatalogURL, fetchTimeout)

	panes := service.NewPanes()
	jobs := service.NewRegistry()
	defer jobs.StopAll()

	planogramHandler := handlers.NewPlanogramHandler(
		builder.New(catalog, logger),
		catalog,
		panes,
		jobs,
		handlers.Options{
			DefaultScale:     cfg.DefaultScale,
			FetchTimeout:     fetchTimeout,
			WatchMinInterval: time.Duration(cfg.WatchMinInterval) * time.Second,
		},
		logger,
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Planogram Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ready"})
	})

	// ============================================================
	// Planogram Routes
	// ============================================================

	planogramHandler.Register(app)

	// ============================================================
	// Server Start
	// ============================================================

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down, stopping watch jobs")
		jobs.StopAll()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("starting planogram service",
		zap.String("addr", addr),
		zap.String("env", cfg.Environment),
		zap.String("catalog", cfg.CatalogURL),
		zap.Float64("default_scale", cfg.DefaultScale))

	if err := app.Listen(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
