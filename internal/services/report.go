package services

import (
	"strings"

	"gudang/internal/models"

	"github.com/shopspring/decimal"
)

// Statistics aggregates an inventory snapshot.
type Statistics struct {
	Count               int             `json:"count"`
	TotalQuantity       int             `json:"total_quantity"`
	TotalValue          decimal.Decimal `json:"total_value"`
	AveragePricePerUnit decimal.Decimal `json:"average_price_per_unit"`
	LowStockCount       int             `json:"low_stock_count"`
	// LowStockPercent is nil for an empty inventory.
	LowStockPercent *float64 `json:"low_stock_percent"`
}

// LowStockView returns the products at or below their threshold, in order.
func LowStockView(products []models.Product) []models.Product {
	out := []models.Product{}
	for _, p := range products {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out
}

// ComputeStatistics sums quantities and values over products. The average
// price per unit is weighted by quantity and zero when nothing is in stock.
func ComputeStatistics(products []models.Product) Statistics {
	st := Statistics{
		Count:               len(products),
		TotalValue:          decimal.Zero,
		AveragePricePerUnit: decimal.Zero,
	}
	for _, p := range products {
		st.TotalQuantity += p.Quantity
		st.TotalValue = st.TotalValue.Add(p.Value())
		if p.IsLowStock() {
			st.LowStockCount++
		}
	}
	if st.TotalQuantity > 0 {
		st.AveragePricePerUnit = st.TotalValue.Div(decimal.NewFromInt(int64(st.TotalQuantity)))
	}
	if st.Count > 0 {
		pct := float64(st.LowStockCount) / float64(st.Count) * 100
		st.LowStockPercent = &pct
	}
	return st
}

// Search returns products whose name contains keyword or whose ID equals it.
// Matching is case-sensitive.
func Search(products []models.Product, keyword string) []models.Product {
	out := []models.Product{}
	for _, p := range products {
		if strings.Contains(p.Name, keyword) || p.ID == keyword {
			out = append(out, p)
		}
	}
	return out
}
