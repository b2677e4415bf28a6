package model

import (
	"time"

	"github.com/google/uuid"
)

// system_config — единственная строка с политиками резервирования.
// Движок только читает её; изменяется она администратором снаружи.
type PolicyConfig struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	// Минимальное количество минут до начала брони,
	// при котором ещё разрешена отмена (и создание).
	MaxCancelLeadMinutes int `gorm:"not null;default:60"`

	// Минимальное количество минут до начала, при котором разрешён перенос.
	MaxReportLeadMinutes int `gorm:"not null;default:60"`

	// Максимальное число переносов одной брони.
	MaxReportAllowed int `gorm:"not null;default:2"`

	// Максимальное число неявок пользователя, после которого отмена запрещена.
	MaxNoShowAllowed int `gorm:"not null;default:3"`

	// За сколько минут до начала отправляется напоминание о подтверждении.
	ConfirmationDeadlineMinutes int `gorm:"not null;default:120"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (PolicyConfig) TableName() string { return "system_config" }
