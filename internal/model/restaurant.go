package model

import (
	"time"

	"github.com/google/uuid"
)

// restaurants
type Restaurant struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Name    string `gorm:"type:varchar(255);not null"`
	Address string `gorm:"type:text"`

	// Часы работы в виде "8-23"; используется только для отображения.
	Hourly string `gorm:"type:varchar(16)"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Blocs []RestaurantBloc `gorm:"foreignKey:RestaurantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// blocs — зал/зона ресторана (терраса, основной зал и т.п.).
type Bloc struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Name string `gorm:"type:varchar(255);not null"`
}

// restaurant_blocs — привязка зоны к ресторану с лимитами размещения.
// Столы ссылаются на эту сущность, а не на ресторан напрямую.
type RestaurantBloc struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	RestaurantID uuid.UUID `gorm:"type:uuid;not null;index"`
	BlocID       uuid.UUID `gorm:"type:uuid;not null;index"`

	MaxTables int `gorm:"not null;default:0"`
	MaxSeats  int `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Restaurant *Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Bloc       *Bloc       `gorm:"foreignKey:BlocID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
