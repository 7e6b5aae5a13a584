package main

import (
	"fmt"
	"log"
	"time"

	"planogram-studio/internal/common/config"
	"planogram-studio/internal/common/logging"
	"planogram-studio/internal/common/middleware"
	"planogram-studio/internal/gateway/handlers"
	"planogram-studio/internal/gateway/proxy"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"
)

// ============================================================
// API Gateway
// ============================================================

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Planogram Studio Gateway",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.CORS())
	app.Use(middleware.Logger())

	// ============================================================
	// Health Check Routes
	// ============================================================

	readiness := handlers.NewReadiness(map[string]string{
		"catalog":   cfg.CatalogURL,
		"planogram": cfg.PlanogramURL,
	}, 2*time.Second)

	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", readiness.Probe)
	app.Get("/health/startup", handlers.StartupProbe)

	app.Get("/docs/openapi.yaml", handlers.SwaggerSpec("docs/openapi.yaml"))
	app.Get("/docs", handlers.SwaggerUI)

	// ============================================================
	// API Routes
	// ============================================================

	api := app.Group("/api/v1")

	api.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Planogram Studio API v1",
			"status":  "ok",
		})
	})

	// ============================================================
	// Service Routes (Proxy)
	// ============================================================

	// Построение layout может ждать две выборки из каталога.
	p := proxy.New(time.Duration(cfg.FetchTimeout+cfg.WriteTimeout)*time.Second, logger)

	p.Mount(api, "/api/v1", proxy.Upstreams{
		Catalog:   cfg.CatalogURL,
		Planogram: cfg.PlanogramURL,
	})

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("starting api gateway",
		zap.String("addr", addr),
		zap.String("env", cfg.Environment),
		zap.String("catalog", cfg.CatalogURL),
		zap.String("planogram", cfg.PlanogramURL))

	if err := app.Listen(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
