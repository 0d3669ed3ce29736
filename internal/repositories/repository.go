package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Repository is the CRUD contract shared by every entity store.
// Each mutating call is committed before it returns.
type Repository[T any] interface {
	GetAll(ctx context.Context) ([]T, error)
	// GetByID returns nil, nil when no record has the id.
	GetByID(ctx context.Context, id uint) (*T, error)
	Add(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	// Delete is a no-op when no record has the id.
	Delete(ctx context.Context, id uint) error
}

// GORMRepository implements Repository over a gorm handle.
type GORMRepository[T any] struct {
	db *gorm.DB
}

// NewGORMRepository creates a new instance of GORMRepository.
func NewGORMRepository[T any](db *gorm.DB) *GORMRepository[T] {
	return &GORMRepository[T]{
		db: db,
	}
}

// GetAll retrieves every record of T, unordered.
func (r *GORMRepository[T]) GetAll(ctx context.Context) ([]T, error) {
	var entities []T
	if err := r.db.WithContext(ctx).Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to get all records: %w", err)
	}
	return entities, nil
}

// GetByID retrieves a single record by its primary key.
func (r *GORMRepository[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).First(&entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get record by ID %d: %w", id, err)
	}
	return &entity, nil
}

// Add inserts entity; the store fills in its primary key.
func (r *GORMRepository[T]) Add(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}
	return nil
}

// Update overwrites every column of entity by primary key.
func (r *GORMRepository[T]) Update(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	return nil
}

// Delete removes the record with id if there is one.
func (r *GORMRepository[T]) Delete(ctx context.Context, id uint) error {
	var entity T
	if err := r.db.WithContext(ctx).Delete(&entity, id).Error; err != nil {
		return fmt.Errorf("failed to delete record %d: %w", id, err)
	}
	return nil
}
