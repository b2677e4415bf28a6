package model

import (
	"time"

	"github.com/google/uuid"
)

// Тип приёма пищи. Набор расширяемый, базовые значения — завтрак/обед/ужин.
type MealType string

const (
	MealTypeBreakfast MealType = "BREAKFAST"
	MealTypeLunch     MealType = "LUNCH"
	MealTypeDinner    MealType = "DINNER"
)

// meal_time_windows — именованное окно приёма пищи ресторана.
// Времена хранятся строками "HH:MM:SS" с ведущими нулями, поэтому
// сравнимы лексикографически и в SQL, и в Go.
type MealTimeWindow struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	RestaurantID uuid.UUID `gorm:"type:uuid;not null;index"`

	MealType  MealType `gorm:"type:varchar(32);not null;index"`
	StartTime string   `gorm:"type:varchar(8);not null"`
	EndTime   string   `gorm:"type:varchar(8);not null"`

	IsActive bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Restaurant *Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
