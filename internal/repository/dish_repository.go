package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/restobook/reservation-platform/internal/model"
)

type DishRepository interface {
	// Блюда по набору ID вместе с их окнами приёмов пищи.
	ListByIDs(ctx context.Context, ids []string) ([]model.Dish, error)
}

type GormDishRepository struct {
	db *gorm.DB
}

func NewGormDishRepository(db *gorm.DB) *GormDishRepository {
	return &GormDishRepository{db: db}
}

func (r *GormDishRepository) ListByIDs(ctx context.Context, ids []string) ([]model.Dish, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []model.Dish
	err := r.db.WithContext(ctx).
		Preload("MealTimes").
		Where("id IN ?", ids).
		Find(&out).Error
	return out, err
}
