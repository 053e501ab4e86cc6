package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"gudang/internal/bootstrap"
	"gudang/internal/config"
	"gudang/internal/handlers"
	"gudang/internal/middleware"
	"gudang/internal/services"
	"gudang/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(viper.New())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init("gudang", cfg.LogLevel)

	// --- Inventory store ---
	store, err := bootstrap.Open(cfg, bootstrap.Options{Publish: true})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open inventory")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing inventory resources")
		}
	}()

	var tokens *services.TokenService
	if cfg.AuthSecret != "" {
		tokens = services.NewTokenService(cfg.AuthSecret, cfg.TokenTTL)
	} else {
		logger.Warn().Msg("AUTH_SECRET is empty, the API is not protected")
	}

	app := newApp(store.Inventory, tokens)

	// --- Start HTTP Server ---
	logger.Info().Str("port", cfg.AppPort).Msg("Starting server")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	<-quit
	logger.Info().Msg("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("Error during Fiber shutdown")
	}
	logger.Info().Msg("Server gracefully stopped")
}

// newApp builds the Fiber application around inventory. A nil tokens leaves
// the API open.
func newApp(inventory *services.InventoryService, tokens *services.TokenService) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"products": inventory.Len(),
			"capacity": inventory.Capacity(),
		})
	})

	apiV1 := app.Group("/api/v1")
	if tokens != nil {
		apiV1.Use(middleware.AuthRequired(tokens))
	}

	handlers.NewInventoryHandler(inventory).RegisterRoutes(apiV1)
	handlers.NewReportHandler(inventory).RegisterRoutes(apiV1)

	return app
}
