package model

import (
	"time"

	"github.com/google/uuid"
)

// notifications — пользовательские события жизненного цикла брони.
// Читаются по запросу; push-доставки нет.
type Notification struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Message string `gorm:"type:text;not null"`
	IsRead  bool   `gorm:"not null;default:false;index"`

	UserID        *uuid.UUID `gorm:"type:uuid;index"`
	ReservationID *uuid.UUID `gorm:"type:uuid;index"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`

	User        *User        `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Reservation *Reservation `gorm:"foreignKey:ReservationID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}
