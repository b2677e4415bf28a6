package model

import (
	"time"

	"github.com/google/uuid"
)

// Статус брони.
type ReservationStatus string

const (
	ReservationStatusActive              ReservationStatus = "active"
	ReservationStatusConfirmed           ReservationStatus = "confirmed"
	ReservationStatusConfirmedByCustomer ReservationStatus = "confirmed_by_customer"
	ReservationStatusCancelled           ReservationStatus = "cancelled"
	ReservationStatusReported            ReservationStatus = "reported"
	ReservationStatusFinished            ReservationStatus = "finished"
)

// reservation_times — временное окно брони.
// Дата хранится строкой "YYYY-MM-DD", времена — "HH:MM:SS";
// оба формата сравнимы лексикографически в SQL. Колонка даты —
// текстовая, чтобы драйверы не превращали её в time.Time при чтении.
// Окно принадлежит ровно одной брони и удаляется вместе с ней.
type TimeWindow struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Date      string `gorm:"type:varchar(10);not null;index"`
	StartTime string `gorm:"type:varchar(8);not null"`

	// Если EndTime < StartTime, окно переходит через полночь
	// и фактически заканчивается на следующий день.
	EndTime string `gorm:"type:varchar(8);not null"`

	Label string `gorm:"type:varchar(255)"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (TimeWindow) TableName() string { return "reservation_times" }

// reservations
type Reservation struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	TableID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index"`

	CustomerName string `gorm:"type:varchar(255)"`
	Phone        string `gorm:"type:varchar(32)"`

	TimeWindowID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	Status ReservationStatus `gorm:"type:varchar(32);not null;default:'active';index"`

	// Подтверждение персоналом (сканирование QR) и самим гостем.
	Confirmed           bool `gorm:"not null;default:false"`
	ConfirmedByCustomer bool `gorm:"not null;default:false"`

	// Cancelled == true всегда означает Status == cancelled.
	Cancelled bool `gorm:"not null;default:false;index"`

	ReportCount  int  `gorm:"not null;default:0"`
	ReminderSent bool `gorm:"not null;default:false"`

	// Стабильная строка для кодирования в QR; сама картинка не хранится.
	QRPayload string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Table      *Table      `gorm:"foreignKey:TableID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	User       *User       `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	TimeWindow *TimeWindow `gorm:"foreignKey:TimeWindowID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`

	Dishes []Dish `gorm:"many2many:reservation_dishes;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
