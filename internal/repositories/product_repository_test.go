package repositories_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"shopapi/internal/models"
	"shopapi/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteDB opens a private in-memory database for one test.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

type repoFactory func(t *testing.T) repositories.ProductRepository

func factories() map[string]repoFactory {
	return map[string]repoFactory{
		"gorm": func(t *testing.T) repositories.ProductRepository {
			return repositories.NewGORMProductRepository(newSQLiteDB(t))
		},
		"memory": func(t *testing.T) repositories.ProductRepository {
			return repositories.NewMemoryProductRepository()
		},
	}
}

func newProduct(name, description, price, category string) *models.Product {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &models.Product{
		Name:        name,
		Description: description,
		Price:       decimal.RequireFromString(price),
		Stock:       3,
		Category:    category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func seed(t *testing.T, repo repositories.ProductRepository) {
	t.Helper()
	ctx := context.Background()
	for _, p := range []*models.Product{
		newProduct("Laptop", "High performance laptop", "1200.00", "Electronics"),
		newProduct("Keyboard", "Mechanical keyboard", "75.00", "Electronics"),
		newProduct("Mouse", "Ergonomic wireless mouse", "25.00", "Accessories"),
		newProduct("Discount 50%", "Half off", "10.00", "Deals"),
	} {
		require.NoError(t, repo.Add(ctx, p))
	}
}

func names(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	sort.Strings(out)
	return out
}

func TestProductRepository_CRUD(t *testing.T) {
	for name, newRepo := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)

			p := newProduct("Widget", "A widget", "9.99", "")
			require.NoError(t, repo.Add(ctx, p))
			assert.Equal(t, uint(1), p.ID)

			second := newProduct("Gadget", "", "5.00", "Tools")
			require.NoError(t, repo.Add(ctx, second))
			assert.Equal(t, uint(2), second.ID)

			got, err := repo.GetByID(ctx, p.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "Widget", got.Name)
			assert.True(t, got.Price.Equal(decimal.RequireFromString("9.99")))
			assert.True(t, got.CreatedAt.Equal(p.CreatedAt))

			got.Price = decimal.RequireFromString("12.50")
			got.UpdatedAt = got.UpdatedAt.Add(time.Minute)
			require.NoError(t, repo.Update(ctx, got))

			reloaded, err := repo.GetByID(ctx, p.ID)
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			assert.True(t, reloaded.Price.Equal(decimal.RequireFromString("12.5")))
			assert.True(t, reloaded.UpdatedAt.After(reloaded.CreatedAt))

			all, err := repo.GetAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"Gadget", "Widget"}, names(all))

			require.NoError(t, repo.Delete(ctx, p.ID))
			gone, err := repo.GetByID(ctx, p.ID)
			require.NoError(t, err)
			assert.Nil(t, gone)

			// Deleting an absent id is not an error.
			require.NoError(t, repo.Delete(ctx, p.ID))
			require.NoError(t, repo.Delete(ctx, 999))

			// IDs are not reused after a delete.
			third := newProduct("Gizmo", "", "1.00", "")
			require.NoError(t, repo.Add(ctx, third))
			assert.Equal(t, uint(3), third.ID)
		})
	}
}

func TestProductRepository_GetByIDMissing(t *testing.T) {
	for name, newRepo := range factories() {
		t.Run(name, func(t *testing.T) {
			got, err := newRepo(t).GetByID(context.Background(), 42)
			assert.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestProductRepository_Queries(t *testing.T) {
	for name, newRepo := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)
			seed(t, repo)

			byCategory, err := repo.GetByCategory(ctx, "Electronics")
			require.NoError(t, err)
			assert.Equal(t, []string{"Keyboard", "Laptop"}, names(byCategory))

			none, err := repo.GetByCategory(ctx, "Garden")
			require.NoError(t, err)
			assert.Empty(t, none)

			inRange, err := repo.GetByPriceRange(ctx, decimal.RequireFromString("25"), decimal.RequireFromString("75"))
			require.NoError(t, err)
			assert.Equal(t, []string{"Keyboard", "Mouse"}, names(inRange), "bounds are inclusive")

			zero, err := repo.GetByPriceRange(ctx, decimal.Zero, decimal.Zero)
			require.NoError(t, err)
			assert.Empty(t, zero)

			byName, err := repo.Search(ctx, "board")
			require.NoError(t, err)
			assert.Equal(t, []string{"Keyboard"}, names(byName))

			byDescription, err := repo.Search(ctx, "wireless")
			require.NoError(t, err)
			assert.Equal(t, []string{"Mouse"}, names(byDescription))

			literal, err := repo.Search(ctx, "0%")
			require.NoError(t, err)
			assert.Equal(t, []string{"Discount 50%"}, names(literal), "wildcards are matched literally")

			exists, err := repo.NameExists(ctx, "Mouse")
			require.NoError(t, err)
			assert.True(t, exists)

			exists, err = repo.NameExists(ctx, "Mous")
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}
