package handlers

import (
	"kantin/internal/middleware"
	"kantin/internal/models"
	"kantin/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RecipientHandler handles HTTP requests for a parent's recipients.
type RecipientHandler struct {
	service *services.RecipientService
}

// NewRecipientHandler creates a new RecipientHandler.
func NewRecipientHandler(service *services.RecipientService) *RecipientHandler {
	return &RecipientHandler{service: service}
}

// RegisterRoutes registers the recipient routes.
func (h *RecipientHandler) RegisterRoutes(router fiber.Router) {
	recipientRoutes := router.Group("/recipients")
	recipientRoutes.Get("/", h.HandleList)
	recipientRoutes.Post("/", h.HandleCreate)
	recipientRoutes.Get("/:id", h.HandleGet)
	recipientRoutes.Put("/:id", h.HandleUpdate)
	recipientRoutes.Delete("/:id", h.HandleDelete)
}

// RecipientRequest is the body for creating or updating a recipient.
type RecipientRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Class string `json:"class" validate:"required,max=50"`
}

func (h *RecipientHandler) HandleList(c *fiber.Ctx) error {
	recipients, err := h.service.List(middleware.UserID(c))
	if err != nil {
		return respondError(c, "Could not retrieve recipients", err)
	}
	return c.JSON(recipients)
}

func (h *RecipientHandler) HandleGet(c *fiber.Ctx) error {
	recipient, err := h.service.Get(middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve recipient", err)
	}
	return c.JSON(recipient)
}

func (h *RecipientHandler) HandleCreate(c *fiber.Ctx) error {
	var req RecipientRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if ok, err := validateBody(c, req); !ok {
		return err
	}

	recipient := models.Recipient{Name: req.Name, Class: req.Class}
	if err := h.service.Create(middleware.UserID(c), &recipient); err != nil {
		return respondError(c, "Could not create recipient", err)
	}
	return c.Status(fiber.StatusCreated).JSON(recipient)
}

func (h *RecipientHandler) HandleUpdate(c *fiber.Ctx) error {
	var req RecipientRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if ok, err := validateBody(c, req); !ok {
		return err
	}

	recipient, err := h.service.Update(middleware.UserID(c), c.Params("id"), models.Recipient{Name: req.Name, Class: req.Class})
	if err != nil {
		return respondError(c, "Could not update recipient", err)
	}
	return c.JSON(recipient)
}

// HandleDelete refuses with 409 while orders reference the recipient.
func (h *RecipientHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, "Could not delete recipient", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
