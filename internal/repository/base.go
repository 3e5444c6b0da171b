package repository

import (
	"errors"

	"blogicum/internal/models"

	"gorm.io/gorm"
)

// first loads the row matched by query and conds. A missing row becomes a
// NotFound error naming resource and key.
func first[T any](query *gorm.DB, resource string, key interface{}, conds ...interface{}) (*T, error) {
	var row T
	if err := query.First(&row, conds...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError(resource, key)
		}
		return nil, models.NewInternalError(err)
	}
	return &row, nil
}

// mustAffect reports NotFound for a write that matched no row.
func mustAffect(res *gorm.DB, resource string, key interface{}) error {
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(resource, key)
	}
	return nil
}

func dbError(err error) error {
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
