// Package render prints inventory data as terminal tables. Out-of-stock rows
// are red, low-stock rows yellow and the rest green; set color.NoColor to
// print plain text.
package render

import (
	"fmt"
	"io"
	"strings"

	"gudang/internal/models"
	"gudang/internal/services"

	"github.com/fatih/color"
)

const (
	rule   = "+----------------------+----------+--------------+------+-----------------+------+------------+"
	header = "| Name                 | ID       | Category     | Qty  | Price           | Min  | Date       |"
)

var (
	outOfStock = color.New(color.FgRed)
	lowStock   = color.New(color.FgYellow)
	inStock    = color.New(color.FgGreen)
	title      = color.New(color.Bold)
)

// Products prints products as a table followed by a total line.
func Products(w io.Writer, products []models.Product) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, rule)
	for _, p := range products {
		Product(w, p)
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total: %d product(s)\n", len(products))
}

// Matches prints a titled table, or empty when nothing matched.
func Matches(w io.Writer, heading string, products []models.Product, empty string) {
	title.Fprintf(w, "\n=== %s ===\n", heading)
	if len(products) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	Products(w, products)
}

// Product prints one colored row.
func Product(w io.Writer, p models.Product) {
	c := inStock
	switch {
	case p.IsOutOfStock():
		c = outOfStock
	case p.IsLowStock():
		c = lowStock
	}
	c.Fprintf(w, "| %-20s | %-8s | %-12s | %4d | %15s | %4d | %10s |\n",
		p.Name, p.ID, p.Category, p.Quantity, p.Price.StringFixed(2), p.MinStock, p.Date)
}

// Statistics prints the aggregate figures of an inventory.
func Statistics(w io.Writer, st services.Statistics) {
	title.Fprintln(w, "\n=== INVENTORY STATISTICS ===")
	fmt.Fprintf(w, "Total number of different products : %d\n", st.Count)
	fmt.Fprintf(w, "Total quantity of all products     : %d units\n", st.TotalQuantity)
	fmt.Fprintf(w, "Total inventory value              : %s\n", st.TotalValue.StringFixed(2))
	fmt.Fprintf(w, "Average price per unit             : %s\n", st.AveragePricePerUnit.StringFixed(2))
	fmt.Fprintf(w, "Products in low stock              : %d", st.LowStockCount)
	if st.LowStockPercent != nil {
		fmt.Fprintf(w, " (%.1f%%)", *st.LowStockPercent)
	}
	fmt.Fprintln(w)

	if st.LowStockCount > 0 {
		lowStock.Fprintln(w, "Warning: some products are at or below their minimum threshold.")
	} else {
		inStock.Fprintln(w, "All stock levels are sufficient.")
	}
}

// Changes prints change-log lines under a heading.
func Changes(w io.Writer, requested int, lines []string) {
	title.Fprintf(w, "\n=== RECENT CHANGES (Last %d) ===\n", requested)
	if len(lines) == 0 {
		fmt.Fprintln(w, "No history available.")
		return
	}
	fmt.Fprintln(w, strings.Join(lines, "\n"))
}
