package repository

import (
	"context"

	"blogicum/internal/cache"
	"blogicum/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	// GetBySlug returns the category whatever its publication state.
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	SetPublished(ctx context.Context, slug string, published bool) error
	Delete(ctx context.Context, slug string) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository returns a CategoryRepository. Lookups by slug go
// through the redis cache when one is configured.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	category, err := cache.Aside(ctx, "category", cache.CategoryKey(slug), cache.CategoryTTL,
		func(ctx context.Context) (models.Category, error) {
			c, err := first[models.Category](r.db.WithContext(ctx).Where("slug = ?", slug), "Category", slug)
			if err != nil {
				return models.Category{}, err
			}
			return *c, nil
		})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return first[models.Category](r.db.WithContext(ctx), "Category", id, id)
}

func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&categories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateCategory(ctx, category.Slug)
	return nil
}

func (r *categoryRepository) SetPublished(ctx context.Context, slug string, published bool) error {
	res := r.db.WithContext(ctx).Model(&models.Category{}).Where("slug = ?", slug).Update("is_published", published)
	if err := mustAffect(res, "Category", slug); err != nil {
		return err
	}
	cache.InvalidateCategory(ctx, slug)
	return nil
}

// Delete removes the category; the database cascades to its posts and their comments.
func (r *categoryRepository) Delete(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Category{})
	if err := mustAffect(res, "Category", slug); err != nil {
		return err
	}
	cache.InvalidateCategory(ctx, slug)
	return nil
}
