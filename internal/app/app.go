// Package app assembles repositories, services and handlers into a Fiber app.
package app

import (
	"errors"
	"time"

	"kantin/internal/config"
	"kantin/internal/handlers"
	"kantin/internal/metrics"
	"kantin/internal/middleware"
	"kantin/internal/payment"
	"kantin/internal/repositories"
	"kantin/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// SnapConfig derives the gateway settings from cfg.
func SnapConfig(cfg config.Config) payment.SnapConfig {
	return payment.SnapConfig{
		ServerKey:    cfg.MidtransServerKey,
		ClientKey:    cfg.MidtransClientKey,
		IsProduction: cfg.MidtransIsProduction,
		BaseURL:      cfg.MidtransSnapURL,
		APIURL:       cfg.MidtransAPIURL,
		Timeout:      cfg.MidtransTimeout,
	}
}

// New wires the HTTP application. publisher may be nil when the broker is disabled.
func New(cfg config.Config, db *gorm.DB, gateway services.Gateway, publisher services.EventPublisher) *fiber.App {
	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	recipientRepo := repositories.NewGORMRecipientRepository(db)
	menuRepo := repositories.NewGORMMenuItemRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	batchRepo := repositories.NewGORMPaymentBatchRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	menuService := services.NewMenuService(menuRepo)
	recipientService := services.NewRecipientService(recipientRepo, orderRepo)
	cartService := services.NewCartService(cartRepo, menuRepo)
	orderService := services.NewOrderService(orderRepo, recipientRepo, cartRepo, menuRepo, publisher,
		services.DeliveryWindow{CutoffHour: cfg.OrderCutoffHour, MaxDaysAhead: cfg.OrderMaxDaysAhead})
	paymentService := services.NewPaymentService(orderRepo, batchRepo, userRepo, gateway, SnapConfig(cfg), publisher)
	reportService := services.NewReportService(orderRepo)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	menuHandler := handlers.NewMenuHandler(menuService)
	recipientHandler := handlers.NewRecipientHandler(recipientService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	webhookHandler := handlers.NewWebhookHandler(paymentService)
	adminHandler := handlers.NewAdminHandler(authService, reportService)

	app := fiber.New(fiber.Config{
		AppName:      "kantin",
		ErrorHandler: errorHandler,
	})

	// --- Middleware ---
	app.Use(recover.New())
	if cfg.AppEnv != "test" {
		app.Use(logger.New()) // Request logger
	}

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		broker := "disabled"
		if publisher != nil {
			broker = "enabled"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"rabbitmq": broker,
		})
	})
	app.Get("/metrics", metrics.Handler())

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")

	// Public routes
	authHandler.RegisterRoutes(apiV1)
	menuHandler.RegisterRoutes(apiV1)
	webhookHandler.RegisterRoutes(apiV1)
	paymentHandler.RegisterPublicRoutes(apiV1)

	// Protected routes (require JWT authentication)
	protected := apiV1.Group("", middleware.AuthRequired(authService))
	recipientHandler.RegisterRoutes(protected)
	cartHandler.RegisterRoutes(protected)
	paymentHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected)

	admin := protected.Group("/admin", middleware.AdminOnly())
	orderHandler.RegisterAdminRoutes(admin)
	menuHandler.RegisterAdminRoutes(admin)
	adminHandler.RegisterRoutes(admin)

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"message": err.Error(),
	})
}
