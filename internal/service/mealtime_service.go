package service

import (
	"context"

	"fmt"

	"github.com/google/uuid"

	"github.com/restobook/reservation-platform/internal/booking"
	"github.com/restobook/reservation-platform/internal/model"
	"github.com/restobook/reservation-platform/internal/repository"
)

// MealTimeService управляет окнами приёмов пищи ресторана.
// Инвариант на запись: активные окна разных типов одного ресторана
// не пересекаются.
type MealTimeService struct {
	mealTimes   repository.MealTimeRepository
	restaurants repository.RestaurantRepository
}

func NewMealTimeService(
	mealTimes repository.MealTimeRepository,
	restaurants repository.RestaurantRepository,
) *MealTimeService {
	return &MealTimeService{mealTimes: mealTimes, restaurants: restaurants}
}

// CreateMealTimeInput — запрос на создание окна приёма пищи.
type CreateMealTimeInput struct {
	RestaurantID uuid.UUID
	MealType     model.MealType
	StartTime    string
	EndTime      string
}

// MealTimePatch — частичное изменение окна.
type MealTimePatch struct {
	MealType  *model.MealType
	StartTime *string
	EndTime   *string
}

// Create создаёт окно после проверки пересечений с окнами других типов.
func (s *MealTimeService) Create(ctx context.Context, input CreateMealTimeInput) (*model.MealTimeWindow, error) {
	if _, err := s.restaurants.GetByID(ctx, input.RestaurantID.String()); err != nil {
		return nil, wrapNotFound(err, "restaurant %s", input.RestaurantID)
	}

	start, err := booking.NormalizeClock(input.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := booking.NormalizeClock(input.EndTime)
	if err != nil {
		return nil, err
	}

	if err := s.validateNoOverlap(ctx, input.RestaurantID, input.MealType, start, end, uuid.Nil); err != nil {
		return nil, err
	}

	w := &model.MealTimeWindow{
		ID:           uuid.New(),
		RestaurantID: input.RestaurantID,
		MealType:     input.MealType,
		StartTime:    start,
		EndTime:      end,
		IsActive:     true,
	}
	if err := s.mealTimes.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Update меняет тип или границы окна; пересечения проверяются заново,
// само окно из проверки исключается.
func (s *MealTimeService) Update(ctx context.Context, id uuid.UUID, patch MealTimePatch) (*model.MealTimeWindow, error) {
	w, err := s.mealTimes.GetByID(ctx, id.String())
	if err != nil {
		return nil, wrapNotFound(err, "meal time window %s", id)
	}

	newType := w.MealType
	if patch.MealType != nil {
		newType = *patch.MealType
	}
	newStart := w.StartTime
	if patch.StartTime != nil {
		if newStart, err = booking.NormalizeClock(*patch.StartTime); err != nil {
			return nil, err
		}
	}
	newEnd := w.EndTime
	if patch.EndTime != nil {
		if newEnd, err = booking.NormalizeClock(*patch.EndTime); err != nil {
			return nil, err
		}
	}

	if err := s.validateNoOverlap(ctx, w.RestaurantID, newType, newStart, newEnd, w.ID); err != nil {
		return nil, err
	}

	w.MealType = newType
	w.StartTime = newStart
	w.EndTime = newEnd
	if err := s.mealTimes.Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Toggle включает/выключает окно.
func (s *MealTimeService) Toggle(ctx context.Context, id uuid.UUID) (*model.MealTimeWindow, error) {
	w, err := s.mealTimes.GetByID(ctx, id.String())
	if err != nil {
		return nil, wrapNotFound(err, "meal time window %s", id)
	}
	w.IsActive = !w.IsActive
	if err := s.mealTimes.Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// GetByID возвращает окно по идентификатору.
func (s *MealTimeService) GetByID(ctx context.Context, id uuid.UUID) (*model.MealTimeWindow, error) {
	w, err := s.mealTimes.GetByID(ctx, id.String())
	if err != nil {
		return nil, wrapNotFound(err, "meal time window %s", id)
	}
	return w, nil
}

// ListByRestaurant — окна ресторана.
func (s *MealTimeService) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]model.MealTimeWindow, error) {
	return s.mealTimes.ListByRestaurant(ctx, restaurantID.String())
}

// ListAll — окна всех ресторанов.
func (s *MealTimeService) ListAll(ctx context.Context) ([]model.MealTimeWindow, error) {
	return s.mealTimes.ListAll(ctx)
}

// CountByMealType — распределение окон по типам приёмов пищи.
func (s *MealTimeService) CountByMealType(ctx context.Context) (map[model.MealType]int64, error) {
	return s.mealTimes.CountByMealType(ctx)
}

// validateNoOverlap отклоняет окно, пересекающееся по времени с активным
// окном другого типа того же ресторана. Окна одного типа между собой
// не проверяются.
func (s *MealTimeService) validateNoOverlap(
	ctx context.Context,
	restaurantID uuid.UUID,
	mealType model.MealType,
	startClock, endClock string,
	excludeID uuid.UUID,
) error {
	start, err := booking.ParseClock(startClock)
	if err != nil {
		return err
	}
	end, err := booking.ParseClock(endClock)
	if err != nil {
		return err
	}

	existing, err := s.mealTimes.ListActiveByRestaurant(ctx, restaurantID.String())
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == excludeID || other.MealType == mealType {
			continue
		}
		otherStart, err := booking.ParseClock(other.StartTime)
		if err != nil {
			return err
		}
		otherEnd, err := booking.ParseClock(other.EndTime)
		if err != nil {
			return err
		}
		if booking.ClockRangesOverlap(start, end, otherStart, otherEnd) {
			return fmt.Errorf(
				"%w: time overlap with existing %s window", booking.ErrValidation, other.MealType)
		}
	}
	return nil
}
