package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/restobook/reservation-platform/internal/model"
)

type RestaurantRepository interface {
	// Ресторан по ID.
	GetByID(ctx context.Context, id string) (*model.Restaurant, error)
}

type GormRestaurantRepository struct {
	db *gorm.DB
}

func NewGormRestaurantRepository(db *gorm.DB) *GormRestaurantRepository {
	return &GormRestaurantRepository{db: db}
}

func (r *GormRestaurantRepository) GetByID(ctx context.Context, id string) (*model.Restaurant, error) {
	var rest model.Restaurant
	if err := r.db.WithContext(ctx).First(&rest, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rest, nil
}
