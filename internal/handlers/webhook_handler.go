package handlers

import (
	"encoding/json"
	"log/slog"

	"kantin/internal/payment"
	"kantin/internal/services"

	"github.com/gofiber/fiber/v2"
)

// WebhookHandler receives asynchronous notifications from the payment gateway.
type WebhookHandler struct {
	service *services.PaymentService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(service *services.PaymentService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// RegisterRoutes registers the notification endpoint. It must stay outside
// the authenticated group; the gateway authenticates by signature.
func (h *WebhookHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/payments/notification", h.HandleNotification)
}

// HandleNotification answers 200 {"success":true} once the outcome is stored.
// Any failure answers 500 so the gateway delivers the notification again.
func (h *WebhookHandler) HandleNotification(c *fiber.Ctx) error {
	var n payment.Notification
	if err := json.Unmarshal(c.Body(), &n); err != nil {
		return notificationFailed(c, "", err)
	}

	if _, err := h.service.HandleNotification(n); err != nil {
		return notificationFailed(c, n.OrderID, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func notificationFailed(c *fiber.Ctx, orderID string, err error) error {
	slog.Error("payment notification rejected", "order_id", orderID, "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
