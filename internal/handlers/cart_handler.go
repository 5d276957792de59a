package handlers

import (
	"kantin/internal/middleware"
	"kantin/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the caller's cart.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClear)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Put("/items/:menuItemId", h.HandleSetQuantity)
	cartRoutes.Delete("/items/:menuItemId", h.HandleRemoveItem)
}

// AddCartItemRequest is the body for adding to the cart.
type AddCartItemRequest struct {
	MenuItemID string `json:"menu_item_id" validate:"required"`
	Quantity   int    `json:"quantity" validate:"gt=0"`
}

// SetQuantityRequest is the body for changing a line; zero removes it.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(middleware.UserID(c))
	if err != nil {
		return respondError(c, "Could not retrieve cart", err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if ok, err := validateBody(c, req); !ok {
		return err
	}
	if err := h.service.AddItem(middleware.UserID(c), req.MenuItemID, req.Quantity); err != nil {
		return respondError(c, "Could not add item to cart", err)
	}
	return h.HandleGetCart(c)
}

func (h *CartHandler) HandleSetQuantity(c *fiber.Ctx) error {
	var req SetQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.service.SetQuantity(middleware.UserID(c), c.Params("menuItemId"), req.Quantity); err != nil {
		return respondError(c, "Could not update cart", err)
	}
	return h.HandleGetCart(c)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	if err := h.service.RemoveItem(middleware.UserID(c), c.Params("menuItemId")); err != nil {
		return respondError(c, "Could not remove item from cart", err)
	}
	return h.HandleGetCart(c)
}

func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	if err := h.service.Clear(middleware.UserID(c)); err != nil {
		return respondError(c, "Could not clear cart", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
