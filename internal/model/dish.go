package model

import (
	"time"

	"github.com/google/uuid"
)

// dishes
type Dish struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Name        string  `gorm:"type:varchar(255);not null"`
	Description string  `gorm:"type:text"`
	Price       float64 `gorm:"not null;default:0"`

	RestaurantID *uuid.UUID `gorm:"type:uuid;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	// Окна приёмов пищи, в которые блюдо доступно для заказа.
	MealTimes []MealTimeWindow `gorm:"many2many:dish_meal_times;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// dish_meal_times — кастомная join-таблица многие-ко-многим.
type DishMealTime struct {
	DishID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	MealTimeWindowID uuid.UUID `gorm:"type:uuid;primaryKey"`

	CreatedAt time.Time `gorm:"not null;default:now()"`

	Dish           *Dish           `gorm:"foreignKey:DishID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	MealTimeWindow *MealTimeWindow `gorm:"foreignKey:MealTimeWindowID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
