package handlers

import (
	"errors"
	"fmt"

	"gudang/internal/models"
	"gudang/internal/services"
	"gudang/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// InventoryHandler handles HTTP requests for products.
type InventoryHandler struct {
	service *services.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(service *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *InventoryHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/next-id", h.HandleNextID)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Patch("/:id", h.HandleModifyProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)

	router.Post("/reset", h.HandleReset)
}

// createProductRequest is the body of POST /products. An empty ID asks the
// store to generate one; a missing min_stock means the default threshold.
type createProductRequest struct {
	Name     string          `json:"name"`
	ID       string          `json:"id"`
	Category string          `json:"category"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	MinStock *int            `json:"min_stock"`
}

// HandleListProducts returns every product in store order.
func (h *InventoryHandler) HandleListProducts(c *fiber.Ctx) error {
	return c.JSON(h.service.List())
}

// HandleNextID returns the ID the store would generate next.
func (h *InventoryHandler) HandleNextID(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"id": h.service.NextID()})
}

// HandleGetProduct returns a single product.
func (h *InventoryHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.Get(c.Params("id"))
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(product)
}

// HandleCreateProduct adds a product. The store checks capacity, then the ID,
// then the fields.
func (h *InventoryHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req createProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product := h.service.NewProduct()
	product.Name = req.Name
	product.Category = req.Category
	product.Quantity = req.Quantity
	product.Price = req.Price
	if req.MinStock != nil {
		product.MinStock = *req.MinStock
	}

	var (
		created models.Product
		err     error
	)
	if req.ID == "" {
		created, err = h.service.AddNew(product)
	} else {
		product.ID = req.ID
		created, err = h.service.Add(product)
	}
	if err != nil {
		return writeError(c, err, &created)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleModifyProduct applies the proposed fields in the body. Invalid fields
// are ignored rather than rejected.
func (h *InventoryHandler) HandleModifyProduct(c *fiber.Ctx) error {
	var upd models.ProductUpdate
	if err := c.BodyParser(&upd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	updated, err := h.service.Modify(c.Params("id"), upd)
	if err != nil {
		return writeError(c, err, &updated)
	}
	return c.JSON(updated)
}

// HandleDeleteProduct previews the product unless the request carries
// confirm=true, in which case it is deleted.
func (h *InventoryHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if !c.QueryBool("confirm") {
		preview, err := h.service.PreviewDelete(id)
		if err != nil {
			return writeError(c, err, nil)
		}
		return c.Status(fiber.StatusPreconditionRequired).JSON(fiber.Map{
			"message": fmt.Sprintf("Repeat with confirm=true to delete product %s", id),
			"product": preview,
		})
	}

	removed, err := h.service.CommitDelete(id)
	if err != nil {
		return writeError(c, err, &removed)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %s deleted successfully", id),
		"product": removed,
	})
}

// HandleReset wipes the inventory and its history when confirm=true.
func (h *InventoryHandler) HandleReset(c *fiber.Ctx) error {
	if !c.QueryBool("confirm") {
		return writeError(c, services.ErrConfirmationRequired, nil)
	}
	if err := h.service.Reset(); err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(fiber.Map{
		"message": "Inventory and history have been reset",
	})
}

func validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// writeError maps store errors to HTTP responses. When a persistence failure
// follows an applied change, the affected product is included in the body.
func writeError(c *fiber.Ctx, err error, product *models.Product) error {
	if errors.Is(err, services.ErrInvalidProduct) {
		return validationFailed(c, err)
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrDuplicateID):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrCapacityExceeded):
		status = fiber.StatusInsufficientStorage
	case errors.Is(err, services.ErrConfirmationRequired):
		status = fiber.StatusPreconditionRequired
	}

	body := fiber.Map{
		"message": errorMessage(err),
		"error":   err.Error(),
	}
	if errors.Is(err, services.ErrPersistence) {
		logger.Error().Err(err).Msg("Inventory change applied but not persisted")
		if product != nil && product.ID != "" {
			body["product"] = product
		}
	}
	return c.Status(status).JSON(body)
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return "Product not found"
	case errors.Is(err, services.ErrDuplicateID):
		return "A product with this ID already exists"
	case errors.Is(err, services.ErrCapacityExceeded):
		return "Inventory is full"
	case errors.Is(err, services.ErrConfirmationRequired):
		return "Confirmation required"
	case errors.Is(err, services.ErrPersistence):
		return "Change applied in memory but could not be saved"
	default:
		return "Internal error"
	}
}
