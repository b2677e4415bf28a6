package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restobook/reservation-platform/internal/model"
	"github.com/restobook/reservation-platform/internal/repository"
)

// StatsService — агрегаты для дашборда. Только чтение; все связи
// между сущностями выражены явными JOIN-ами.
type StatsService struct {
	db     *gorm.DB
	tables repository.TableRepository
}

func NewStatsService(db *gorm.DB, tables repository.TableRepository) *StatsService {
	return &StatsService{db: db, tables: tables}
}

// ConfirmationStats — подтверждённые гостями и отменённые брони.
type ConfirmationStats struct {
	ConfirmedByCustomer    int64
	NotConfirmedByCustomer int64
	Cancelled              int64
}

func (s *StatsService) ConfirmationStats(ctx context.Context) (*ConfirmationStats, error) {
	var out ConfirmationStats

	if err := s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("confirmed_by_customer = ? AND cancelled = ?", true, false).
		Count(&out.ConfirmedByCustomer).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("confirmed_by_customer = ? AND cancelled = ?", false, false).
		Count(&out.NotConfirmedByCustomer).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("cancelled = ?", true).
		Count(&out.Cancelled).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// RestaurantDashboard — сводка по ресторану.
type RestaurantDashboard struct {
	TotalTables           int64
	CancelledReservations int64
	ReportedReservations  int64
}

func (s *StatsService) DashboardByRestaurant(ctx context.Context, restaurantID uuid.UUID) (*RestaurantDashboard, error) {
	var out RestaurantDashboard

	total, err := s.tables.CountByRestaurant(ctx, restaurantID.String())
	if err != nil {
		return nil, err
	}
	out.TotalTables = total

	base := func() *gorm.DB {
		return s.db.WithContext(ctx).
			Model(&model.Reservation{}).
			Joins("JOIN tables ON tables.id = reservations.table_id").
			Joins("JOIN restaurant_blocs ON restaurant_blocs.id = tables.restaurant_bloc_id").
			Where("restaurant_blocs.restaurant_id = ?", restaurantID.String())
	}

	if err := base().Where("reservations.cancelled = ?", true).
		Count(&out.CancelledReservations).Error; err != nil {
		return nil, err
	}
	if err := base().Where("reservations.report_count > 0").
		Count(&out.ReportedReservations).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// DateCount — количество броней ресторана на дату.
type DateCount struct {
	Date         string
	RestaurantID string
	Count        int64
}

func (s *StatsService) CountByDateAndRestaurant(ctx context.Context) ([]DateCount, error) {
	var out []DateCount
	err := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Select("reservation_times.date AS date, restaurant_blocs.restaurant_id AS restaurant_id, COUNT(*) AS count").
		Joins("JOIN reservation_times ON reservation_times.id = reservations.time_window_id").
		Joins("JOIN tables ON tables.id = reservations.table_id").
		Joins("JOIN restaurant_blocs ON restaurant_blocs.id = tables.restaurant_bloc_id").
		Group("reservation_times.date, restaurant_blocs.restaurant_id").
		Order("reservation_times.date ASC").
		Scan(&out).Error
	return out, err
}

// RestaurantCount — количество активных броней ресторана.
type RestaurantCount struct {
	RestaurantID string
	Total        int64
}

func (s *StatsService) CountActiveByRestaurant(ctx context.Context) ([]RestaurantCount, error) {
	var out []RestaurantCount
	err := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Select("restaurant_blocs.restaurant_id AS restaurant_id, COUNT(*) AS total").
		Joins("JOIN tables ON tables.id = reservations.table_id").
		Joins("JOIN restaurant_blocs ON restaurant_blocs.id = tables.restaurant_bloc_id").
		Where("reservations.status = ?", model.ReservationStatusActive).
		Group("restaurant_blocs.restaurant_id").
		Scan(&out).Error
	return out, err
}
