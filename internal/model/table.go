package model

import (
	"time"

	"github.com/google/uuid"
)

// Статус стола.
type TableStatus string

const (
	TableStatusFree     TableStatus = "free"
	TableStatusOccupied TableStatus = "occupied"
	TableStatusReserved TableStatus = "reserved"
)

// tables
type Table struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Name     string `gorm:"type:varchar(255);not null"`
	NumSeats int    `gorm:"not null;default:1"`

	Status TableStatus `gorm:"type:varchar(32);not null;default:'free';index"`

	// Положение стола на плане зала.
	Row   int    `gorm:"not null;default:0"`
	Col   int    `gorm:"not null;default:0"`
	Shape string `gorm:"type:varchar(32)"`

	RestaurantBlocID uuid.UUID `gorm:"type:uuid;not null;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	RestaurantBloc *RestaurantBloc `gorm:"foreignKey:RestaurantBlocID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
