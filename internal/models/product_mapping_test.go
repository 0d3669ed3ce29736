package models_test

import (
	"testing"
	"time"

	"shopapi/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestNewProductFromCreate(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))
	req := models.CreateProductRequest{
		Name:  "Widget",
		Price: decimal.RequireFromString("9.99"),
		Stock: intPtr(5),
	}

	p := models.NewProductFromCreate(req, now)

	assert.Zero(t, p.ID)
	assert.Equal(t, "Widget", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("9.99")))
	assert.Equal(t, 5, p.Stock)
	assert.Equal(t, "", p.Category, "no default category on create")
	assert.Equal(t, time.UTC, p.CreatedAt.Location())
	assert.True(t, p.CreatedAt.Equal(now))
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
}

func TestProduct_ApplyUpdate(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := models.Product{ID: 7, Name: "Old", Price: decimal.NewFromInt(1), CreatedAt: created, UpdatedAt: created}

	later := created.Add(time.Hour)
	p.ApplyUpdate(models.UpdateProductRequest{
		Name:        "New",
		Description: "desc",
		Price:       decimal.RequireFromString("2.50"),
		Stock:       intPtr(0),
		Category:    "Tools",
		Image:       "http://img/1.png",
	}, later)

	assert.Equal(t, uint(7), p.ID)
	assert.Equal(t, "New", p.Name)
	assert.Equal(t, "desc", p.Description)
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, "Tools", p.Category)
	assert.Equal(t, "http://img/1.png", p.Image)
	assert.Equal(t, created, p.CreatedAt)
	assert.Equal(t, later, p.UpdatedAt)
}

func TestNewProductResponses_EmptyIsNotNil(t *testing.T) {
	out := models.NewProductResponses(nil)
	assert.NotNil(t, out)
	assert.Len(t, out, 0)
}
