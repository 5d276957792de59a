package handlers

import (
	"bytes"
	"fmt"
	"time"

	"kantin/internal/models"
	"kantin/internal/repositories"
	"kantin/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves user management and reports.
type AdminHandler struct {
	authService   *services.AuthService
	reportService *services.ReportService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(authService *services.AuthService, reportService *services.ReportService) *AdminHandler {
	return &AdminHandler{authService: authService, reportService: reportService}
}

// RegisterRoutes registers admin routes; the router must already enforce AdminOnly.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/users", h.HandleListUsers)
	router.Get("/reports/summary", h.HandleSummary)
	router.Get("/reports/transactions.csv", h.HandleExportTransactions)
}

func (h *AdminHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.authService.ListUsers()
	if err != nil {
		return respondError(c, "Could not retrieve users", err)
	}
	return c.JSON(users)
}

// HandleSummary returns the finance and kitchen overview.
func (h *AdminHandler) HandleSummary(c *fiber.Ctx) error {
	summary, err := h.reportService.Summary(time.Now())
	if err != nil {
		return respondError(c, "Could not build report", err)
	}
	return c.JSON(summary)
}

// HandleExportTransactions downloads orders as CSV, optionally filtered by ?status=.
func (h *AdminHandler) HandleExportTransactions(c *fiber.Ctx) error {
	filter := repositories.OrderFilter{Status: models.OrderStatus(c.Query("status"))}
	if filter.Status != "" && !filter.Status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid status filter",
			"error":   fmt.Sprintf("invalid order status: %s", filter.Status),
		})
	}

	var buf bytes.Buffer
	if err := h.reportService.ExportTransactions(&buf, filter); err != nil {
		return respondError(c, "Could not export transactions", err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="transactions-%s.csv"`, time.Now().Format("20060102")))
	return c.Send(buf.Bytes())
}
