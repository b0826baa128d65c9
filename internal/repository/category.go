package repository

import (
	"context"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines read access to the static category
// reference data.
type CategoryRepository interface {
	List(ctx context.Context) ([]*models.Category, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}

func (r *categoryRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.Category, error) {
	byID := make(map[uint]*models.Category, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	var categories []*models.Category
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, c := range categories {
		byID[c.ID] = c
	}
	return byID, nil
}

// Create exists for seeding; the API never writes categories.
func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
