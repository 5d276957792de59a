package handlers

import (
	"kantin/internal/models"
	"kantin/internal/repositories"
	"kantin/internal/services"

	"github.com/gofiber/fiber/v2"
)

// MenuHandler handles HTTP requests for the menu.
type MenuHandler struct {
	service *services.MenuService
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(service *services.MenuService) *MenuHandler {
	return &MenuHandler{service: service}
}

// RegisterRoutes registers the public menu routes.
func (h *MenuHandler) RegisterRoutes(router fiber.Router) {
	menuRoutes := router.Group("/menu")
	menuRoutes.Get("/", h.HandleGetMenu)
	menuRoutes.Get("/:id", h.HandleGetMenuItem)
}

// RegisterAdminRoutes registers the menu management routes.
func (h *MenuHandler) RegisterAdminRoutes(router fiber.Router) {
	menuRoutes := router.Group("/menu")
	menuRoutes.Get("/", h.HandleGetFullMenu)
	menuRoutes.Post("/", h.HandleCreateMenuItem)
	menuRoutes.Put("/:id", h.HandleUpdateMenuItem)
	menuRoutes.Delete("/:id", h.HandleDeleteMenuItem)
}

// HandleGetMenu lists available items, optionally of one category.
func (h *MenuHandler) HandleGetMenu(c *fiber.Ctx) error {
	items, err := h.service.GetMenu(repositories.MenuFilter{Category: c.Query("category"), OnlyAvailable: true})
	if err != nil {
		return respondError(c, "Could not retrieve menu", err)
	}
	return c.JSON(items)
}

// HandleGetFullMenu lists every item including unavailable ones.
func (h *MenuHandler) HandleGetFullMenu(c *fiber.Ctx) error {
	items, err := h.service.GetMenu(repositories.MenuFilter{Category: c.Query("category")})
	if err != nil {
		return respondError(c, "Could not retrieve menu", err)
	}
	return c.JSON(items)
}

// HandleGetMenuItem retrieves a single menu item.
func (h *MenuHandler) HandleGetMenuItem(c *fiber.Ctx) error {
	item, err := h.service.GetMenuItem(c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve menu item", err)
	}
	return c.JSON(item)
}

// HandleCreateMenuItem adds a menu item.
func (h *MenuHandler) HandleCreateMenuItem(c *fiber.Ctx) error {
	var item models.MenuItem
	if err := c.BodyParser(&item); err != nil {
		return invalidBody(c, err)
	}
	item.ID = ""
	if ok, err := validateBody(c, item); !ok {
		return err
	}
	if err := h.service.CreateMenuItem(&item); err != nil {
		return respondError(c, "Could not create menu item", err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleUpdateMenuItem replaces a menu item.
func (h *MenuHandler) HandleUpdateMenuItem(c *fiber.Ctx) error {
	var item models.MenuItem
	if err := c.BodyParser(&item); err != nil {
		return invalidBody(c, err)
	}
	item.ID = c.Params("id")
	if ok, err := validateBody(c, item); !ok {
		return err
	}
	if err := h.service.UpdateMenuItem(&item); err != nil {
		return respondError(c, "Could not update menu item", err)
	}
	return c.JSON(item)
}

// HandleDeleteMenuItem removes a menu item.
func (h *MenuHandler) HandleDeleteMenuItem(c *fiber.Ctx) error {
	if err := h.service.DeleteMenuItem(c.Params("id")); err != nil {
		return respondError(c, "Could not delete menu item", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
