package handlers

import (
	"log/slog"

	"kantin/internal/middleware"
	"kantin/internal/models"
	"kantin/internal/payment"
	"kantin/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles payment initiation and browser-reported results.
type PaymentHandler struct {
	service *services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterPublicRoutes registers the routes that need no session.
func (h *PaymentHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Get("/payments/config", h.HandleConfig)
}

// RegisterRoutes registers the authenticated payment routes.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/payments", h.HandleCreatePayment)
	router.Post("/payments/:id/result", h.HandleResult)
	router.Post("/orders/pay-batch", h.HandlePayBatch)
	router.Post("/orders/:id/pay", h.HandlePayOrder)
}

// HandleConfig returns what the browser needs to load the payment overlay.
func (h *PaymentHandler) HandleConfig(c *fiber.Ctx) error {
	return c.JSON(h.service.ClientConfig())
}

// HandleCreatePayment requests a token for a caller-built charge.
// Every failure is a 500 with {"error": ...}.
func (h *PaymentHandler) HandleCreatePayment(c *fiber.Ctx) error {
	var req payment.ChargeRequest
	if err := c.BodyParser(&req); err != nil {
		return paymentFailed(c, err)
	}

	resp, err := h.service.CreatePayment(req)
	if err != nil {
		return paymentFailed(c, err)
	}
	return c.JSON(resp)
}

func (h *PaymentHandler) HandlePayOrder(c *fiber.Ctx) error {
	session, err := h.service.PayOrder(middleware.UserID(c), c.Params("id"))
	if err != nil {
		return paymentFailed(c, err)
	}
	return c.JSON(session)
}

// PayBatchRequest lists the orders to pay together.
type PayBatchRequest struct {
	OrderIDs []string `json:"order_ids" validate:"required,min=1,dive,required"`
}

func (h *PaymentHandler) HandlePayBatch(c *fiber.Ctx) error {
	var req PayBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if ok, err := validateBody(c, req); !ok {
		return err
	}

	session, err := h.service.PayBatch(middleware.UserID(c), req.OrderIDs)
	if err != nil {
		return paymentFailed(c, err)
	}
	return c.JSON(session)
}

// HandleResult takes the outcome the overlay reported for a payment id.
func (h *PaymentHandler) HandleResult(c *fiber.Ctx) error {
	var reported payment.Result
	if err := c.BodyParser(&reported); err != nil {
		return invalidBody(c, err)
	}

	id := c.Params("id")
	status, err := h.service.ApplyBrowserResult(middleware.UserID(c), id, reported)
	if err != nil {
		return respondError(c, "Could not record payment result", err)
	}

	display := models.DisplayStatus(status)
	return c.JSON(fiber.Map{
		"payment_id":     id,
		"status":         status,
		"status_label":   display.Label,
		"status_variant": display.Variant,
	})
}

func paymentFailed(c *fiber.Ctx, err error) error {
	slog.Error("payment initiation failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
