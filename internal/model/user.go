package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// users
type User struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Email    string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Name     string `gorm:"type:varchar(255);not null"`
	LastName string `gorm:"type:varchar(255)"`
	Phone    string `gorm:"type:varchar(32)"`

	// Счётчик неявок: растёт, когда гость не пришёл по брони.
	NoShowCount int `gorm:"not null;default:0"`

	// Дата начала контракта (для персонала ресторана).
	ContractStart *datatypes.Date `gorm:"type:date"`

	// Персонал привязан к ресторану; для гостей NULL.
	RestaurantID *uuid.UUID `gorm:"type:uuid;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Restaurant *Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}
