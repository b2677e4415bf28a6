package service

import (
	"github.com/google/uuid"

	"github.com/restobook/reservation-platform/internal/booking"
	"github.com/restobook/reservation-platform/internal/model"
)

// TimeWindowInput — запрошенное окно брони. EndTime может быть пустым:
// тогда конец выводится из окна приёма пищи, содержащего начало.
type TimeWindowInput struct {
	Date      string
	StartTime string
	EndTime   string
	Label     string
}

// CreateReservationInput — запрос на создание брони.
type CreateReservationInput struct {
	TableID      uuid.UUID
	CustomerName string
	Phone        string
	DishIDs      []uuid.UUID
	Window       TimeWindowInput
}

// TimeWindowPatch — частичное изменение окна брони.
type TimeWindowPatch struct {
	Date      *string
	StartTime *string
	Label     *string
}

// UpdateReservationInput — частичное обновление брони. Каждое поле
// применяется независимо, но запрос атомарен: отказ любой части
// откатывает весь запрос.
type UpdateReservationInput struct {
	TableID      *uuid.UUID
	Cancel       bool
	Report       bool
	CustomerName *string
	Window       *TimeWindowPatch
}

// ReservationSummary — усечённое представление брони после обновления.
type ReservationSummary struct {
	ID           uuid.UUID
	Cancelled    bool
	Status       model.ReservationStatus
	CustomerName string
	Date         string
	UserID       uuid.UUID
	TableID      uuid.UUID
	TimeWindowID uuid.UUID
}

func toMealWindows(ws []model.MealTimeWindow) ([]booking.MealWindow, error) {
	out := make([]booking.MealWindow, 0, len(ws))
	for _, w := range ws {
		start, err := booking.ParseClock(w.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := booking.ParseClock(w.EndTime)
		if err != nil {
			return nil, err
		}
		out = append(out, booking.MealWindow{
			ID:    w.ID,
			Type:  string(w.MealType),
			Start: start,
			End:   end,
		})
	}
	return out, nil
}

func toDishMealTypes(dishes []model.Dish) []booking.DishMealTypes {
	out := make([]booking.DishMealTypes, 0, len(dishes))
	for _, d := range dishes {
		types := make([]string, 0, len(d.MealTimes))
		for _, mt := range d.MealTimes {
			types = append(types, string(mt.MealType))
		}
		out = append(out, booking.DishMealTypes{
			DishID:   d.ID,
			DishName: d.Name,
			Types:    types,
		})
	}
	return out
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
