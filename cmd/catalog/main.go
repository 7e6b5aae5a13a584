package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planogram-studio/internal/catalog/handlers"
	"planogram-studio/internal/catalog/repository"
	"planogram-studio/internal/common/config"
	"planogram-studio/internal/common/logging"
	"planogram-studio/internal/common/middleware"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"
)

// ============================================================
// Catalog Service
// ============================================================

func main() {
	cfg := config.Load()
	cfg.Port = cfg.PortOr("3002")

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	db, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatal("open db", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background(), cfg.MigrationsPath); err != nil {
		logger.Fatal("init db", zap.String("migrations", cfg.MigrationsPath), zap.Error(err))
	}

	catalogHandler := handlers.NewCatalogHandler(repo, time.Duration(cfg.FetchTimeout)*time.Second, logger)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Catalog Service",
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
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := repo.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "db unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ready"})
	})

	// ============================================================
	// Catalog Routes
	// ============================================================

	catalogHandler.Register(app)

	// ============================================================
	// Server Start
	// ============================================================

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("starting catalog service",
		zap.String("addr", addr),
		zap.String("env", cfg.Environment),
		zap.String("db", cfg.DBPath))

	if err := app.Listen(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
