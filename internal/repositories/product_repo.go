package repositories

import (
	"gudang/internal/codec"
	"gudang/internal/models"
)

// ProductRepository persists the whole inventory collection at once.
type ProductRepository interface {
	// Load returns at most limit products in stored order; limit <= 0 means all.
	// A source that does not exist yet yields an empty result and no error.
	Load(limit int) (codec.Result, error)
	// Save replaces the stored collection with products.
	Save(products []models.Product) error
	// Truncate empties the stored collection.
	Truncate() error
}
