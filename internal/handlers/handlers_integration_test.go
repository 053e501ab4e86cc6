package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"gudang/internal/handlers"
	"gudang/internal/models"
	"gudang/internal/repositories"
	"gudang/internal/services"
	"gudang/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock() time.Time { return time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC) }

// setupApp builds a Fiber app over an in-memory inventory.
func setupApp(t *testing.T, opts ...services.Option) (*fiber.App, *services.InventoryService) {
	t.Helper()
	opts = append([]services.Option{services.WithClock(clock), services.WithLogger(zerolog.Nop())}, opts...)
	inventory := services.NewInventoryService(
		repositories.NewMemoryProductRepository(),
		services.NewChangeLog(repositories.NewMemoryChangeLogRepository(), clock),
		opts...,
	)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	handlers.NewInventoryHandler(inventory).RegisterRoutes(apiV1)
	handlers.NewReportHandler(inventory).RegisterRoutes(apiV1)

	seedProductsForTest(t, inventory)
	return app, inventory
}

// seedProductsForTest populates the inventory for tests.
func seedProductsForTest(t *testing.T, inventory *services.InventoryService) {
	t.Helper()
	products := []models.Product{
		{Name: "Test Laptop", ID: "P001", Category: "Electronics", Quantity: 5, Price: decimal.RequireFromString("1000"), MinStock: 2, Date: "2026-10-01"},
		{Name: "Test Monitor", ID: "P002", Category: "Electronics", Quantity: 1, Price: decimal.RequireFromString("200"), MinStock: 3, Date: "2026-10-01"},
	}
	for _, p := range products {
		_, err := inventory.Add(p)
		require.NoError(t, err)
	}
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	logger.Disable()
	os.Exit(m.Run())
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestProductEndpoints(t *testing.T) {
	app, inventory := setupApp(t)

	// --- GET /products ---
	resp := doJSON(t, app, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var products []models.Product
	decode(t, resp, &products)
	require.Len(t, products, 2)
	assert.Equal(t, "P001", products[0].ID)

	// --- POST /products without an ID ---
	resp = doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":     "Keyboard",
		"category": "Accessories",
		"quantity": 12,
		"price":    75.5,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Product
	decode(t, resp, &created)
	assert.Equal(t, "P003", created.ID)
	assert.Equal(t, models.DefaultMinStock, created.MinStock)
	assert.Equal(t, "2026-10-15", created.Date)
	assert.True(t, created.Price.Equal(decimal.RequireFromString("75.5")))

	// --- GET /products/:id ---
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/P003", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// --- PATCH /products/:id ---
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/products/P003", map[string]interface{}{
		"name":     "Mechanical keyboard",
		"quantity": -3,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Product
	decode(t, resp, &updated)
	assert.Equal(t, "Mechanical keyboard", updated.Name)
	assert.Equal(t, 12, updated.Quantity)

	// --- DELETE without confirmation only previews ---
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/products/P003", nil)
	assert.Equal(t, http.StatusPreconditionRequired, resp.StatusCode)
	assert.Equal(t, 3, inventory.Len())

	// --- DELETE with confirmation ---
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/products/P003?confirm=true", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var deleteResp map[string]interface{}
	decode(t, resp, &deleteResp)
	assert.Contains(t, deleteResp["message"], "deleted successfully")

	// Verify deletion
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/P003", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateProductErrors(t *testing.T) {
	app, _ := setupApp(t, services.WithCapacity(3))

	// Duplicate ID
	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"id": "P001", "name": "Copy", "category": "Misc", "quantity": 1, "price": 1,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Validation failure
	resp = doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name": "Bad, name", "category": "Misc", "quantity": 1, "price": 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "Validation failed", body["message"])
	assert.Contains(t, body["errors"], "Name")

	// Fill to capacity, then overflow
	resp = doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name": "Third", "category": "Misc", "quantity": 1, "price": 1,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name": "Fourth", "category": "Misc", "quantity": 1, "price": 1,
	})
	assert.Equal(t, http.StatusInsufficientStorage, resp.StatusCode)

	// Malformed body
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	raw, err := app.Test(req, -1)
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestReportEndpoints(t *testing.T) {
	app, _ := setupApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/reports/low-stock", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var low []models.Product
	decode(t, resp, &low)
	require.Len(t, low, 1)
	assert.Equal(t, "P002", low[0].ID)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/reports/statistics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var stats services.Statistics
	decode(t, resp, &stats)
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, 6, stats.TotalQuantity)
	assert.True(t, stats.TotalValue.Equal(decimal.NewFromInt(5200)))
	require.NotNil(t, stats.LowStockPercent)
	assert.InDelta(t, 50.0, *stats.LowStockPercent, 1e-9)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/search?q=Monitor", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var found []models.Product
	decode(t, resp, &found)
	require.Len(t, found, 1)
	assert.Equal(t, "P002", found[0].ID)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/search", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/changes?n=1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var changes map[string][]string
	decode(t, resp, &changes)
	assert.Equal(t, []string{"[2026-10-15 09:30:00] ADDED: Test Monitor (ID: P002, Qty: 1, Price: 200.00)"}, changes["changes"])

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/next-id", nil)
	var next map[string]string
	decode(t, resp, &next)
	assert.Equal(t, "P003", next["id"])
}

func TestResetEndpoint(t *testing.T) {
	app, inventory := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/reset", nil)
	assert.Equal(t, http.StatusPreconditionRequired, resp.StatusCode)
	assert.Equal(t, 2, inventory.Len())

	resp = doJSON(t, app, http.MethodPost, "/api/v1/reset?confirm=true", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, inventory.Len())

	resp = doJSON(t, app, http.MethodGet, "/api/v1/changes", nil)
	var changes map[string][]string
	decode(t, resp, &changes)
	assert.Empty(t, changes["changes"])
}

func TestCreateProductOnFullStoreReportsCapacityFirst(t *testing.T) {
	app, inventory := setupApp(t, services.WithCapacity(2))

	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name": "Bad, name", "category": "", "quantity": -1, "price": 1,
	})
	assert.Equal(t, http.StatusInsufficientStorage, resp.StatusCode)
	assert.Equal(t, 2, inventory.Len())

	resp = doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"id": "P001", "name": "Copy", "category": "Misc", "quantity": 1, "price": 1,
	})
	assert.Equal(t, http.StatusInsufficientStorage, resp.StatusCode)
}
