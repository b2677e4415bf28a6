package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Минимальная длительность брони.
const MinReservationDuration = 60 * time.Minute

// ValidateReservationTime проверяет окно новой брони:
// начало раньше конца, длительность не меньше часа,
// начало минимум за minLeadMinutes от текущего момента.
func ValidateReservationTime(start, end, now time.Time, minLeadMinutes int) error {
	if !start.Before(end) {
		return fmt.Errorf("%w: start time must be before end time", ErrValidation)
	}
	if end.Sub(start) < MinReservationDuration {
		return fmt.Errorf("%w: reservation must last at least 60 minutes", ErrValidation)
	}
	if MinutesUntil(now, start) < minLeadMinutes {
		return fmt.Errorf(
			"%w: reservation must start at least %d minutes from now", ErrValidation, minLeadMinutes)
	}
	return nil
}

// DishMealTypes — типы приёмов пищи, в которые доступно блюдо.
type DishMealTypes struct {
	DishID   uuid.UUID
	DishName string
	Types    []string
}

// ValidateDishCoherence проверяет, что каждое выбранное блюдо
// предлагается в тип приёма пищи подобранного окна.
func ValidateDishCoherence(window MealWindow, dishes []DishMealTypes) error {
	for _, d := range dishes {
		if len(d.Types) == 0 {
			return fmt.Errorf("%w: dish %q has no meal windows assigned", ErrValidation, d.DishName)
		}
		found := false
		for _, t := range d.Types {
			if t == window.Type {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf(
				"%w: dish %q is not offered during %s", ErrValidation, d.DishName, window.Type)
		}
	}
	return nil
}

// QRPayload — стабильная строка для кодирования в QR-код брони.
func QRPayload(reservationID uuid.UUID) string {
	return fmt.Sprintf("Reservation ID: %s", reservationID)
}
