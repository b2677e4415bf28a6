package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/restobook/reservation-platform/internal/model"
)

type MealTimeRepository interface {
	// Окно по ID.
	GetByID(ctx context.Context, id string) (*model.MealTimeWindow, error)
	// Все окна ресторана (включая выключенные).
	ListByRestaurant(ctx context.Context, restaurantID string) ([]model.MealTimeWindow, error)
	// Только активные окна ресторана.
	ListActiveByRestaurant(ctx context.Context, restaurantID string) ([]model.MealTimeWindow, error)
	// Все окна всех ресторанов.
	ListAll(ctx context.Context) ([]model.MealTimeWindow, error)
	// Создать окно.
	Create(ctx context.Context, w *model.MealTimeWindow) error
	// Сохранить изменённое окно.
	Save(ctx context.Context, w *model.MealTimeWindow) error
	// Количество окон по типу приёма пищи.
	CountByMealType(ctx context.Context) (map[model.MealType]int64, error)
}

type GormMealTimeRepository struct {
	db *gorm.DB
}

func NewGormMealTimeRepository(db *gorm.DB) *GormMealTimeRepository {
	return &GormMealTimeRepository{db: db}
}

func (r *GormMealTimeRepository) GetByID(ctx context.Context, id string) (*model.MealTimeWindow, error) {
	var w model.MealTimeWindow
	if err := r.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *GormMealTimeRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]model.MealTimeWindow, error) {
	var out []model.MealTimeWindow
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("start_time ASC").
		Find(&out).Error
	return out, err
}

func (r *GormMealTimeRepository) ListActiveByRestaurant(ctx context.Context, restaurantID string) ([]model.MealTimeWindow, error) {
	var out []model.MealTimeWindow
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Where("is_active = ?", true).
		Order("start_time ASC").
		Find(&out).Error
	return out, err
}

func (r *GormMealTimeRepository) ListAll(ctx context.Context) ([]model.MealTimeWindow, error) {
	var out []model.MealTimeWindow
	err := r.db.WithContext(ctx).Order("start_time ASC").Find(&out).Error
	return out, err
}

func (r *GormMealTimeRepository) Create(ctx context.Context, w *model.MealTimeWindow) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *GormMealTimeRepository) Save(ctx context.Context, w *model.MealTimeWindow) error {
	return r.db.WithContext(ctx).Save(w).Error
}

func (r *GormMealTimeRepository) CountByMealType(ctx context.Context) (map[model.MealType]int64, error) {
	var rows []struct {
		MealType model.MealType
		Count    int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.MealTimeWindow{}).
		Select("meal_type, COUNT(*) as count").
		Group("meal_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[model.MealType]int64, len(rows))
	for _, row := range rows {
		out[row.MealType] = row.Count
	}
	return out, nil
}
