package models_test

import (
	"strings"
	"testing"
	"time"

	"gudang/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() models.Product {
	return models.Product{
		Name:     "Rice",
		ID:       "P001",
		Category: "Food",
		Quantity: 10,
		Price:    decimal.RequireFromString("1500.50"),
		MinStock: 5,
		Date:     "2026-10-15",
	}
}

func TestIsLowStockBoundary(t *testing.T) {
	p := validProduct()

	p.Quantity = 5
	assert.True(t, p.IsLowStock(), "equal to the threshold counts as low stock")
	assert.True(t, models.IsLowStock(p))

	p.Quantity = 6
	assert.False(t, p.IsLowStock())

	p.Quantity = 0
	assert.True(t, p.IsOutOfStock())
	assert.True(t, p.IsLowStock())
}

func TestNewProductDefaults(t *testing.T) {
	now := time.Date(2026, 10, 15, 23, 59, 0, 0, time.UTC)
	p := models.NewProduct(now)

	assert.Equal(t, models.DefaultMinStock, p.MinStock)
	assert.Equal(t, "2026-10-15", p.Date)
	assert.Zero(t, p.Quantity)
	assert.True(t, p.Price.IsZero())
	assert.Empty(t, p.ID)
}

func TestProductValue(t *testing.T) {
	p := validProduct()
	p.Quantity = 3
	p.Price = decimal.RequireFromString("2.25")
	assert.True(t, p.Value().Equal(decimal.RequireFromString("6.75")))
}

func TestGenerateUniqueID(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{"empty inventory", nil, "P001"},
		{"gap in sequence", []string{"P001", "P002", "P005"}, "P006"},
		{"unordered", []string{"P010", "P003"}, "P011"},
		{"foreign ids ignored", []string{"X999", "abc", "P004"}, "P005"},
		{"non numeric suffix counts as zero", []string{"Pxyz"}, "P001"},
		{"trailing garbage after digits", []string{"P12a"}, "P013"},
		{"past three digits", []string{"P999"}, "P1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var products []models.Product
			for _, id := range tt.ids {
				p := validProduct()
				p.ID = id
				products = append(products, p)
			}
			assert.Equal(t, tt.want, models.GenerateUniqueID(products))
		})
	}
}

func TestValidateProduct(t *testing.T) {
	require.NoError(t, models.ValidateProduct(validProduct()))

	tests := []struct {
		name   string
		mutate func(p *models.Product)
	}{
		{"empty name", func(p *models.Product) { p.Name = "" }},
		{"name too long", func(p *models.Product) { p.Name = strings.Repeat("n", 50) }},
		{"id too long", func(p *models.Product) { p.ID = "P0000000001" }},
		{"category too long", func(p *models.Product) { p.Category = strings.Repeat("c", 30) }},
		{"delimiter in name", func(p *models.Product) { p.Name = "Rice, white" }},
		{"newline in category", func(p *models.Product) { p.Category = "Fo\nod" }},
		{"negative quantity", func(p *models.Product) { p.Quantity = -1 }},
		{"negative price", func(p *models.Product) { p.Price = decimal.NewFromInt(-1) }},
		{"negative min stock", func(p *models.Product) { p.MinStock = -3 }},
		{"bad date", func(p *models.Product) { p.Date = "15/10/2026" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct()
			tt.mutate(&p)
			assert.Error(t, models.ValidateProduct(p))
		})
	}
}

func TestValidateFieldLimits(t *testing.T) {
	assert.NoError(t, models.ValidateField(strings.Repeat("n", 49), models.NameRule))
	assert.Error(t, models.ValidateField(strings.Repeat("n", 50), models.NameRule))
	assert.Error(t, models.ValidateField("", models.CategoryRule))
	assert.Error(t, models.ValidateField(-1, models.CountRule))
	assert.True(t, models.ValidPrice(decimal.Zero))
	assert.False(t, models.ValidPrice(decimal.RequireFromString("-0.01")))
}
