package handlers

import (
	"kantin/internal/middleware"
	"kantin/internal/models"
	"kantin/internal/repositories"
	"kantin/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes of the caller.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Post("/", h.HandleCheckout)
	orderRoutes.Get("/delivery-window", h.HandleDeliveryWindow)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/:id/reorder", h.HandleReorder)
}

// RegisterAdminRoutes registers order management routes.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetAllOrders)
	orderRoutes.Get("/:id", h.HandleGetAnyOrder)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

// HandleGetOrders lists the caller's orders, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(repositories.OrderFilter{
		UserID: middleware.UserID(c),
		Status: models.OrderStatus(c.Query("status")),
	})
	if err != nil {
		return respondError(c, "Could not retrieve orders", err)
	}
	return c.JSON(newOrderViews(orders))
}

// HandleGetAllOrders lists every order.
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(repositories.OrderFilter{Status: models.OrderStatus(c.Query("status"))})
	if err != nil {
		return respondError(c, "Could not retrieve orders", err)
	}
	return c.JSON(newOrderViews(orders))
}

// HandleGetOrderByID retrieves one of the caller's orders.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrderForUser(middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve order", err)
	}
	return c.JSON(newOrderView(*order))
}

func (h *OrderHandler) HandleGetAnyOrder(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve order", err)
	}
	return c.JSON(newOrderView(*order))
}

// HandleDeliveryWindow reports the dates checkout currently accepts.
func (h *OrderHandler) HandleDeliveryWindow(c *fiber.Ctx) error {
	earliest, latest := h.service.Window()
	return c.JSON(fiber.Map{
		"min_date": earliest.Format(services.DateLayout),
		"max_date": latest.Format(services.DateLayout),
	})
}

// HandleCheckout creates an order from the cart.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var req services.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if ok, err := validateBody(c, req); !ok {
		return err
	}

	order, err := h.service.Checkout(middleware.UserID(c), req)
	if err != nil {
		return respondError(c, "Could not create order", err)
	}
	return c.Status(fiber.StatusCreated).JSON(newOrderView(*order))
}

// HandleReorder copies a past order's items back into the cart.
func (h *OrderHandler) HandleReorder(c *fiber.Ctx) error {
	result, err := h.service.Reorder(middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not reorder", err)
	}
	return c.JSON(result)
}

// HandleUpdateOrderStatus sets an order's status by hand.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var updateData struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		return invalidBody(c, err)
	}
	if ok, err := validateBody(c, updateData); !ok {
		return err
	}

	if err := h.service.UpdateOrderStatus(orderID, updateData.Status); err != nil {
		return respondError(c, "Could not update order status", err)
	}

	order, err := h.service.GetOrder(orderID)
	if err != nil {
		return respondError(c, "Could not retrieve order", err)
	}
	return c.JSON(newOrderView(*order))
}
