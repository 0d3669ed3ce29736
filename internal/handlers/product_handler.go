package handlers

import (
	"fmt"
	"net/url"
	"strconv"

	"shopapi/internal/models"
	"shopapi/internal/services"
	"shopapi/internal/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	logger  *logrus.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *logrus.Logger) *ProductHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the product routes on router.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	// Literal segments must be registered before /:id.
	productRoutes.Get("/category/:category", h.HandleGetProductsByCategory)
	productRoutes.Get("/price-range", h.HandleGetProductsByPriceRange)
	productRoutes.Get("/search", h.HandleSearchProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if product == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Product with ID %d not found", id),
		})
	}
	return c.JSON(product)
}

// HandleGetProductsByCategory retrieves products in the category named in the path.
func (h *ProductHandler) HandleGetProductsByCategory(c *fiber.Ctx) error {
	category, err := url.PathUnescape(c.Params("category"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid category")
	}

	products, err := h.service.GetProductsByCategory(c.UserContext(), category)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req models.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Debug("Invalid create product body")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return validationFailed(c, errs)
	}

	created, err := h.service.CreateProduct(c.UserContext(), req)
	if err != nil {
		return err
	}

	c.Location(fmt.Sprintf("/api/products/%d", created.ID))
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdateProduct overwrites an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req models.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Debug("Invalid update product body")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return validationFailed(c, errs)
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(updated)
}

// HandleDeleteProduct removes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	deleted, err := h.service.DeleteProduct(c.UserContext(), id)
	if err != nil {
		return err
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Product with ID %d not found", id),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetProductsByPriceRange retrieves products priced within ?minPrice=&maxPrice=.
// Missing bounds default to zero.
func (h *ProductHandler) HandleGetProductsByPriceRange(c *fiber.Ctx) error {
	minPrice, err := decimal.NewFromString(c.Query("minPrice", "0"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "minPrice must be a number")
	}
	maxPrice, err := decimal.NewFromString(c.Query("maxPrice", "0"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "maxPrice must be a number")
	}

	products, err := h.service.GetProductsByPriceRange(c.UserContext(), minPrice, maxPrice)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// HandleSearchProducts retrieves products whose name or description contains ?searchTerm=.
func (h *ProductHandler) HandleSearchProducts(c *fiber.Ctx) error {
	products, err := h.service.SearchProducts(c.UserContext(), c.Query("searchTerm"))
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid product ID")
	}
	return uint(id), nil
}

func validationFailed(c *fiber.Ctx, errs []validator.FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  validator.Messages(errs),
	})
}
