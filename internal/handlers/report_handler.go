package handlers

import (
	"gudang/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler serves read-only views of the inventory.
type ReportHandler struct {
	service *services.InventoryService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(service *services.InventoryService) *ReportHandler {
	return &ReportHandler{
		service: service,
	}
}

// RegisterRoutes registers the report routes with the Fiber app.
func (h *ReportHandler) RegisterRoutes(router fiber.Router) {
	reportRoutes := router.Group("/reports")
	reportRoutes.Get("/low-stock", h.HandleLowStock)
	reportRoutes.Get("/statistics", h.HandleStatistics)

	router.Get("/search", h.HandleSearch)
	router.Get("/changes", h.HandleRecentChanges)
}

// HandleLowStock lists products at or below their alert threshold.
func (h *ReportHandler) HandleLowStock(c *fiber.Ctx) error {
	return c.JSON(h.service.LowStock())
}

// HandleStatistics returns aggregate figures for the inventory.
func (h *ReportHandler) HandleStatistics(c *fiber.Ctx) error {
	return c.JSON(h.service.Statistics())
}

// HandleSearch matches q against product names and IDs.
func (h *ReportHandler) HandleSearch(c *fiber.Ctx) error {
	keyword := c.Query("q")
	if keyword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Query parameter 'q' is required",
		})
	}
	return c.JSON(h.service.Search(keyword))
}

// HandleRecentChanges returns the last n change-log lines, oldest first.
func (h *ReportHandler) HandleRecentChanges(c *fiber.Ctx) error {
	n := c.QueryInt("n", services.DefaultRecentChanges)
	lines, err := h.service.RecentChanges(n)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(fiber.Map{"changes": lines})
}
