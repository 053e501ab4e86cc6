package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DateLayout is the calendar format of Product.Date.
	DateLayout = "2006-01-02"
	// DefaultMinStock is the alert threshold of a freshly initialized product.
	DefaultMinStock = 5

	MaxNameLength     = 49
	MaxIDLength       = 9
	MaxCategoryLength = 29
)

// Product represents one item held in the inventory.
type Product struct {
	Name     string          `json:"name" validate:"required,max=49,nodelim"`
	ID       string          `json:"id" validate:"required,max=9,nodelim"`
	Category string          `json:"category" validate:"required,max=29,nodelim"`
	Quantity int             `json:"quantity" validate:"gte=0"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
	MinStock int             `json:"min_stock" validate:"gte=0"`
	Date     string          `json:"date" validate:"required,datetime=2006-01-02"`
}

// NewProduct returns an empty product with the default alert threshold,
// dated at now.
func NewProduct(now time.Time) Product {
	return Product{
		Price:    decimal.Zero,
		MinStock: DefaultMinStock,
		Date:     now.Format(DateLayout),
	}
}

// IsLowStock reports whether the quantity is at or below the alert threshold.
func (p Product) IsLowStock() bool {
	return p.Quantity <= p.MinStock
}

// IsOutOfStock reports whether nothing is left.
func (p Product) IsOutOfStock() bool {
	return p.Quantity == 0
}

// Value is quantity times unit price.
func (p Product) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// IsLowStock is the function form of Product.IsLowStock.
func IsLowStock(p Product) bool {
	return p.IsLowStock()
}

// ProductUpdate carries the proposed values of a modification. Nil fields are
// left untouched.
type ProductUpdate struct {
	Name     *string          `json:"name,omitempty"`
	Category *string          `json:"category,omitempty"`
	Quantity *int             `json:"quantity,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	MinStock *int             `json:"min_stock,omitempty"`
}
