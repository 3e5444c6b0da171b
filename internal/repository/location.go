package repository

import (
	"context"

	"blogicum/internal/models"

	"gorm.io/gorm"
)

// LocationRepository defines persistence operations for locations.
type LocationRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Location, error)
	List(ctx context.Context) ([]models.Location, error)
	Create(ctx context.Context, location *models.Location) error
	SetPublished(ctx context.Context, id uint, published bool) error
	// Delete removes the location; posts keep existing with no location.
	Delete(ctx context.Context, id uint) error
}

type locationRepository struct {
	db *gorm.DB
}

// NewLocationRepository returns a new LocationRepository implementation.
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) GetByID(ctx context.Context, id uint) (*models.Location, error) {
	return first[models.Location](r.db.WithContext(ctx), "Location", id, id)
}

func (r *locationRepository) List(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&locations).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return locations, nil
}

func (r *locationRepository) Create(ctx context.Context, location *models.Location) error {
	if err := r.db.WithContext(ctx).Create(location).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *locationRepository) SetPublished(ctx context.Context, id uint, published bool) error {
	res := r.db.WithContext(ctx).Model(&models.Location{}).Where("id = ?", id).Update("is_published", published)
	return mustAffect(res, "Location", id)
}

func (r *locationRepository) Delete(ctx context.Context, id uint) error {
	return mustAffect(r.db.WithContext(ctx).Delete(&models.Location{}, id), "Location", id)
}
