package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategory is stored when an update leaves the category blank.
const DefaultCategory = "General"

// Product represents a product in the catalog.
// Timestamps are owned by the service layer, so gorm's auto timestamps are disabled.
type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"`
	Name        string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	Description string          `gorm:"type:varchar(1000)"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Stock       int             `gorm:"not null;default:0"`
	Category    string          `gorm:"type:varchar(100);index"`
	Image       string          `gorm:"type:varchar(500)"`
	CreatedAt   time.Time       `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime:false"`
}

// TableName pins the table name regardless of naming strategy.
func (Product) TableName() string {
	return "products"
}

// CreateProductRequest is the body accepted by POST /products.
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=1000"`
	Price       decimal.Decimal `json:"price" validate:"required,price"`
	Stock       *int            `json:"stock" validate:"required,gte=0"`
	Category    string          `json:"category" validate:"max=100"`
	Image       string          `json:"image" validate:"max=500"`
}

// UpdateProductRequest is the body accepted by PUT /products/:id.
type UpdateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=1000"`
	Price       decimal.Decimal `json:"price" validate:"required,price"`
	Stock       *int            `json:"stock" validate:"required,gte=0"`
	Category    string          `json:"category" validate:"max=100"`
	Image       string          `json:"image" validate:"max=500"`
}

// ProductResponse is the product shape returned to API callers.
type ProductResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
