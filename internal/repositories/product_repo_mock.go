package repositories

import (
	"sync"

	"gudang/internal/codec"
	"gudang/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products []models.Product
	saves    int
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a repository seeded with products.
func NewMemoryProductRepository(products ...models.Product) *MemoryProductRepository {
	return &MemoryProductRepository{
		products: append([]models.Product(nil), products...),
	}
}

// Load returns a copy of the stored products.
func (r *MemoryProductRepository) Load(limit int) (codec.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.products)
	if limit > 0 && limit < n {
		n = limit
	}
	return codec.Result{Products: append([]models.Product(nil), r.products[:n]...)}, nil
}

// Save replaces the stored products.
func (r *MemoryProductRepository) Save(products []models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = append([]models.Product(nil), products...)
	r.saves++
	return nil
}

// Truncate drops all stored products.
func (r *MemoryProductRepository) Truncate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = nil
	return nil
}

// Saves reports how many times Save was called.
func (r *MemoryProductRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}
