package repositories

import (
	"fmt"

	"gudang/internal/codec"
	"gudang/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// productRow is the table layout of the GORM backend. Position keeps the
// insertion order of the collection.
type productRow struct {
	Position  int             `gorm:"primaryKey;autoIncrement:false"`
	ProductID string          `gorm:"column:product_id;uniqueIndex;type:varchar(9);not null"`
	Name      string          `gorm:"type:varchar(49);not null"`
	Category  string          `gorm:"type:varchar(29);not null"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:varchar(64);not null"`
	MinStock  int             `gorm:"not null"`
	Date      string          `gorm:"type:varchar(10);not null"`
}

func (productRow) TableName() string {
	return "inventory_products"
}

// GORMProductRepository is a GORM implementation of ProductRepository. It keeps
// the same whole-collection semantics as the file backend.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository migrates the products table and returns the repository.
func NewGORMProductRepository(db *gorm.DB) (*GORMProductRepository, error) {
	if err := db.AutoMigrate(&productRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate inventory table: %w", err)
	}
	return &GORMProductRepository{db: db}, nil
}

// Load retrieves the stored products ordered by position.
func (r *GORMProductRepository) Load(limit int) (codec.Result, error) {
	var rows []productRow
	q := r.db.Order("position")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return codec.Result{}, fmt.Errorf("failed to load products: %w", err)
	}

	res := codec.Result{Products: make([]models.Product, 0, len(rows))}
	for _, row := range rows {
		p := models.Product{
			Name:     row.Name,
			ID:       row.ProductID,
			Category: row.Category,
			Quantity: row.Quantity,
			Price:    row.Price,
			MinStock: row.MinStock,
			Date:     row.Date,
		}
		if err := models.ValidateProduct(p); err != nil {
			res.Skipped++
			continue
		}
		res.Products = append(res.Products, p)
	}
	return res, nil
}

// Save replaces every stored row inside one transaction.
func (r *GORMProductRepository) Save(products []models.Product) error {
	rows := make([]productRow, len(products))
	for i, p := range products {
		rows[i] = productRow{
			Position:  i + 1,
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Quantity:  p.Quantity,
			Price:     p.Price,
			MinStock:  p.MinStock,
			Date:      p.Date,
		}
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&productRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 100).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save products: %w", err)
	}
	return nil
}

// Truncate deletes every stored row.
func (r *GORMProductRepository) Truncate() error {
	if err := r.db.Where("1 = 1").Delete(&productRow{}).Error; err != nil {
		return fmt.Errorf("failed to truncate products: %w", err)
	}
	return nil
}
