package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/restobook/reservation-platform/internal/model"
)

type ReservationRepository interface {
	// Бронь по ID вместе с окном, столом и пользователем.
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	// Брони пользователя, новые сверху.
	ListForUser(ctx context.Context, userID string) ([]model.Reservation, error)
	// Брони ресторана (через стол → зону), по убыванию даты окна.
	ListByRestaurant(ctx context.Context, restaurantID string) ([]model.Reservation, error)
	// Все брони.
	ListAll(ctx context.Context) ([]model.Reservation, error)
	// Пересекающаяся неотменённая бронь того же стола на ту же дату.
	FindConflict(ctx context.Context, tableID, date, startTime, endTime, excludeID string) (*model.Reservation, error)
	// Столы ресторана, занятые в указанный момент.
	UnavailableTableIDs(ctx context.Context, restaurantID, date, clock, excludeID string) ([]string, error)
	// Брони в заданном статусе вместе с окнами (для фоновых проходов).
	ListByStatus(ctx context.Context, status model.ReservationStatus) ([]model.Reservation, error)
	// Неподтверждённые клиентом брони без отправленного напоминания.
	ListPendingReminder(ctx context.Context) ([]model.Reservation, error)
}

// Реализация на GORM.
type GormReservationRepository struct {
	db *gorm.DB
}

func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

func (r *GormReservationRepository) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	var res model.Reservation
	err := r.db.WithContext(ctx).
		Preload("TimeWindow").
		Preload("Table").
		Preload("User").
		First(&res, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *GormReservationRepository) ListForUser(ctx context.Context, userID string) ([]model.Reservation, error) {
	var out []model.Reservation
	err := r.db.WithContext(ctx).
		Preload("TimeWindow").
		Preload("Table").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *GormReservationRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]model.Reservation, error) {
	var out []model.Reservation
	err := r.db.WithContext(ctx).
		Preload("TimeWindow").
		Preload("Table").
		Preload("User").
		Joins("JOIN tables ON tables.id = reservations.table_id").
		Joins("JOIN restaurant_blocs ON restaurant_blocs.id = tables.restaurant_bloc_id").
		Joins("JOIN reservation_times ON reservation_times.id = reservations.time_window_id").
		Where("restaurant_blocs.restaurant_id = ?", restaurantID).
		Order("reservation_times.date DESC").
		Find(&out).Error
	return out, err
}

func (r *GormReservationRepository) ListAll(ctx context.Context) ([]model.Reservation, error) {
	var out []model.Reservation
	err := r.db.WithContext(ctx).
		Preload("TimeWindow").
		Find(&out).Error
	return out, err
}

func (r *GormReservationRepository) FindConflict(
	ctx context.Context,
	tableID, date, startTime, endTime, excludeID string,
) (*model.Reservation, error) {
	res, err := FindConflictTx(r.db.WithContext(ctx), tableID, date, startTime, endTime, excludeID)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// FindConflictTx — вариант проверки пересечений для вызова внутри
// уже открытой транзакции (создание и смена стола держат блокировку).
// Два окна пересекаются, когда existing.start < new.end AND existing.end > new.start.
func FindConflictTx(tx *gorm.DB, tableID, date, startTime, endTime, excludeID string) (*model.Reservation, error) {
	q := tx.
		Model(&model.Reservation{}).
		Joins("JOIN reservation_times ON reservation_times.id = reservations.time_window_id").
		Where("reservations.table_id = ?", tableID).
		Where("reservations.cancelled = ?", false).
		Where("reservation_times.date = ?", date).
		Where("reservation_times.start_time < ? AND reservation_times.end_time > ?", endTime, startTime)

	if excludeID != "" {
		q = q.Where("reservations.id != ?", excludeID)
	}

	var res model.Reservation
	if err := q.First(&res).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *GormReservationRepository) UnavailableTableIDs(
	ctx context.Context,
	restaurantID, date, clock, excludeID string,
) ([]string, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Joins("JOIN reservation_times ON reservation_times.id = reservations.time_window_id").
		Joins("JOIN tables ON tables.id = reservations.table_id").
		Joins("JOIN restaurant_blocs ON restaurant_blocs.id = tables.restaurant_bloc_id").
		Where("restaurant_blocs.restaurant_id = ?", restaurantID).
		Where("reservations.cancelled = ?", false).
		Where("reservation_times.date = ?", date).
		Where("reservation_times.start_time <= ? AND reservation_times.end_time > ?", clock, clock)

	if excludeID != "" {
		q = q.Where("reservations.id != ?", excludeID)
	}

	var ids []string
	if err := q.Distinct().Pluck("reservations.table_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormReservationRepository) ListByStatus(ctx context.Context, status model.ReservationStatus) ([]model.Reservation, error) {
	var out []model.Reservation
	err := r.db.WithContext(ctx).
		Preload("TimeWindow").
		Preload("Table").
		Where("status = ?", status).
		Find(&out).Error
	return out, err
}

func (r *GormReservationRepository) ListPendingReminder(ctx context.Context) ([]model.Reservation, error) {
	var out []model.Reservation
	err := r.db.WithContext(ctx).
		Preload("TimeWindow").
		Preload("User").
		Where("status = ?", model.ReservationStatusActive).
		Where("confirmed_by_customer = ?", false).
		Where("reminder_sent = ?", false).
		Find(&out).Error
	return out, err
}
