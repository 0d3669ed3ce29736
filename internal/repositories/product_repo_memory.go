package repositories

import (
	"context"
	"strings"
	"sync"

	"shopapi/internal/models"

	"github.com/shopspring/decimal"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// Matching is case-sensitive. IDs start at 1 and are never reused.
type MemoryProductRepository struct {
	products map[uint]models.Product
	nextID   uint
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[uint]models.Product),
		nextID:   1,
	}
}

// GetAll returns all products.
func (r *MemoryProductRepository) GetAll(_ context.Context) ([]models.Product, error) {
	return r.filter(func(models.Product) bool { return true }), nil
}

// GetByID returns a copy of the product with id, or nil.
func (r *MemoryProductRepository) GetByID(_ context.Context, id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

// Add stores product under the next free ID.
func (r *MemoryProductRepository) Add(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product.ID = r.nextID
	r.nextID++
	r.products[product.ID] = *product
	return nil
}

// Update overwrites the stored product with the same ID.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID if present.
func (r *MemoryProductRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.products, id)
	return nil
}

// GetByCategory returns products whose category equals category.
func (r *MemoryProductRepository) GetByCategory(_ context.Context, category string) ([]models.Product, error) {
	return r.filter(func(p models.Product) bool {
		return p.Category == category
	}), nil
}

// GetByPriceRange returns products priced within [minPrice, maxPrice].
func (r *MemoryProductRepository) GetByPriceRange(_ context.Context, minPrice, maxPrice decimal.Decimal) ([]models.Product, error) {
	return r.filter(func(p models.Product) bool {
		return p.Price.GreaterThanOrEqual(minPrice) && p.Price.LessThanOrEqual(maxPrice)
	}), nil
}

// Search returns products whose name or description contains term.
func (r *MemoryProductRepository) Search(_ context.Context, term string) ([]models.Product, error) {
	return r.filter(func(p models.Product) bool {
		return strings.Contains(p.Name, term) || strings.Contains(p.Description, term)
	}), nil
}

// NameExists reports whether any stored product is named name.
func (r *MemoryProductRepository) NameExists(_ context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryProductRepository) filter(keep func(models.Product) bool) []models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if keep(p) {
			productList = append(productList, p)
		}
	}
	return productList
}
