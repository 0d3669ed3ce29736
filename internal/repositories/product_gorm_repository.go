package repositories

import (
	"context"
	"fmt"
	"strings"

	"shopapi/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	*GORMRepository[models.Product]
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		GORMRepository: NewGORMRepository[models.Product](db),
		db:             db,
	}
}

// GetByCategory retrieves products whose category equals category.
func (r *GORMProductRepository) GetByCategory(ctx context.Context, category string) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("category = ?", category).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products by category %q: %w", category, err)
	}
	return products, nil
}

// GetByPriceRange retrieves products priced within [minPrice, maxPrice].
func (r *GORMProductRepository) GetByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("price >= ? AND price <= ?", minPrice, maxPrice).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get products by price range %s-%s: %w", minPrice, maxPrice, err)
	}
	return products, nil
}

// Search retrieves products whose name or description contains term.
// LIKE wildcards inside term are matched literally.
func (r *GORMProductRepository) Search(ctx context.Context, term string) ([]models.Product, error) {
	pattern := "%" + likeEscaper.Replace(term) + "%"

	var products []models.Product
	err := r.db.WithContext(ctx).
		Where(`name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'`, pattern, pattern).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search products for %q: %w", term, err)
	}
	return products, nil
}

// NameExists reports whether a product named name is stored.
func (r *GORMProductRepository) NameExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("name = ?", name).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check product name %q: %w", name, err)
	}
	return count > 0, nil
}
