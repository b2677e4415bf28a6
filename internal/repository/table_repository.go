package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/restobook/reservation-platform/internal/model"
)

type TableRepository interface {
	// Стол по ID.
	GetByID(ctx context.Context, id string) (*model.Table, error)
	// Стол вместе с зоной и рестораном.
	GetByIDWithRestaurant(ctx context.Context, id string) (*model.Table, error)
	// Обновить статус стола.
	UpdateStatus(ctx context.Context, id string, status model.TableStatus) error
	// Количество столов ресторана (через зоны).
	CountByRestaurant(ctx context.Context, restaurantID string) (int64, error)
}

type GormTableRepository struct {
	db *gorm.DB
}

func NewGormTableRepository(db *gorm.DB) *GormTableRepository {
	return &GormTableRepository{db: db}
}

func (r *GormTableRepository) GetByID(ctx context.Context, id string) (*model.Table, error) {
	var t model.Table
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *GormTableRepository) GetByIDWithRestaurant(ctx context.Context, id string) (*model.Table, error) {
	var t model.Table
	err := r.db.WithContext(ctx).
		Preload("RestaurantBloc").
		Preload("RestaurantBloc.Restaurant").
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *GormTableRepository) UpdateStatus(ctx context.Context, id string, status model.TableStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Table{}).
		Where("id = ?", id).
		Update("status", status).
		Error
}

func (r *GormTableRepository) CountByRestaurant(ctx context.Context, restaurantID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Table{}).
		Joins("JOIN restaurant_blocs ON restaurant_blocs.id = tables.restaurant_bloc_id").
		Where("restaurant_blocs.restaurant_id = ?", restaurantID).
		Count(&total).Error
	return total, err
}
