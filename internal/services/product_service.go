package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"shopapi/internal/apperrors"
	"shopapi/internal/models"
	"shopapi/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const minSearchTermLength = 2

// EventPublisher sends product change notifications to a broker.
type EventPublisher interface {
	PublishJSON(ctx context.Context, eventType string, payload interface{}) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	logger    *logrus.Logger
	now       func() time.Time
}

// Option configures a ProductService.
type Option func(*ProductService)

// WithPublisher makes the service announce creates, updates and deletes.
func WithPublisher(p EventPublisher) Option {
	return func(s *ProductService) { s.publisher = p }
}

// WithLogger sets the logger used for business events.
func WithLogger(l *logrus.Logger) Option {
	return func(s *ProductService) { s.logger = l }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *ProductService) { s.now = now }
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, opts ...Option) *ProductService {
	s := &ProductService{
		repo:   repo,
		logger: logrus.StandardLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.ProductResponse, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewProductResponses(products), nil
}

// GetProductByID retrieves a single product by its ID. It returns nil, nil
// when the product does not exist.
func (s *ProductService) GetProductByID(ctx context.Context, id uint) (*models.ProductResponse, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil || product == nil {
		return nil, err
	}
	resp := models.NewProductResponse(*product)
	return &resp, nil
}

// GetProductsByCategory retrieves products in exactly the given category.
func (s *ProductService) GetProductsByCategory(ctx context.Context, category string) ([]models.ProductResponse, error) {
	products, err := s.repo.GetByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	return models.NewProductResponses(products), nil
}

// CreateProduct creates a new product. The name must not be in use.
func (s *ProductService) CreateProduct(ctx context.Context, req models.CreateProductRequest) (*models.ProductResponse, error) {
	exists, err := s.repo.NameExists(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicateName(req.Name)
	}

	product := models.NewProductFromCreate(req, s.now())
	if err := s.repo.Add(ctx, &product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("Product created")
	s.publish(ctx, models.ProductCreated, product)

	resp := models.NewProductResponse(product)
	return &resp, nil
}

// UpdateProduct overwrites the mutable fields of an existing product.
//
// The duplicate-name check only fires when the request renames the product;
// it does not look at which record holds the matching name.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, req models.UpdateProductRequest) (*models.ProductResponse, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, productNotFound(id)
	}

	exists, err := s.repo.NameExists(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if exists && existing.Name != req.Name {
		return nil, duplicateName(req.Name)
	}

	category := req.Category
	if strings.TrimSpace(category) == "" {
		category = models.DefaultCategory
	}

	existing.ApplyUpdate(req, s.now())
	existing.Category = category

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}

	s.logger.WithField("product_id", id).Info("Product updated")
	s.publish(ctx, models.ProductUpdated, *existing)

	resp := models.NewProductResponse(*existing)
	return &resp, nil
}

// DeleteProduct removes a product. It reports false when there was nothing to delete.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) (bool, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return false, fmt.Errorf("failed to delete product %d: %w", id, err)
	}

	s.logger.WithField("product_id", id).Info("Product deleted")
	s.publish(ctx, models.ProductDeleted, *existing)
	return true, nil
}

// GetProductsByPriceRange retrieves products priced within [minPrice, maxPrice].
func (s *ProductService) GetProductsByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal) ([]models.ProductResponse, error) {
	if minPrice.IsNegative() {
		return nil, apperrors.Validation("Minimum price cannot be negative")
	}
	if maxPrice.LessThan(minPrice) {
		return nil, apperrors.Validation("Maximum price cannot be less than minimum price")
	}

	products, err := s.repo.GetByPriceRange(ctx, minPrice, maxPrice)
	if err != nil {
		return nil, err
	}
	return models.NewProductResponses(products), nil
}

// SearchProducts retrieves products whose name or description contains term.
func (s *ProductService) SearchProducts(ctx context.Context, term string) ([]models.ProductResponse, error) {
	if strings.TrimSpace(term) == "" {
		return nil, apperrors.Validation("Search term cannot be empty")
	}
	if utf8.RuneCountInString(term) < minSearchTermLength {
		return nil, apperrors.Validation(fmt.Sprintf("Search term must be at least %d characters", minSearchTermLength))
	}

	products, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	return models.NewProductResponses(products), nil
}

// publish is best effort: the mutation is already committed, so a broker
// failure is logged and swallowed.
func (s *ProductService) publish(ctx context.Context, eventType string, product models.Product) {
	if s.publisher == nil {
		return
	}

	event := models.ProductEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		ProductID:  product.ID,
		Name:       product.Name,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishJSON(ctx, eventType, event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event":      eventType,
			"product_id": product.ID,
		}).Warn("Failed to publish product event")
	}
}

func productNotFound(id uint) error {
	return apperrors.NotFound(fmt.Sprintf("Product with ID %d not found", id))
}

func duplicateName(name string) error {
	return apperrors.Conflict(fmt.Sprintf("Product with name '%s' already exists", name))
}
