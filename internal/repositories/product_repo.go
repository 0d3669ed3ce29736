package repositories

import (
	"context"

	"shopapi/internal/models"

	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Repository[models.Product]

	GetByCategory(ctx context.Context, category string) ([]models.Product, error)
	// GetByPriceRange matches minPrice <= price <= maxPrice.
	GetByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal) ([]models.Product, error)
	// Search matches products whose name or description contains term.
	Search(ctx context.Context, term string) ([]models.Product, error)
	// NameExists reports whether any product, including the caller's own, has name.
	NameExists(ctx context.Context, name string) (bool, error)
}
