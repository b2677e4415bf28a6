package booking

import (
	"fmt"

	"github.com/google/uuid"
)

// MealWindow — активное окно приёма пищи ресторана в терминах движка.
// Времена — минуты от полуночи; Wraps == true, если окно переходит
// через полночь (End < Start).
type MealWindow struct {
	ID    uuid.UUID
	Type  string
	Start int
	End   int
}

// Wraps сообщает, переходит ли окно через полночь.
func (w MealWindow) Wraps() bool {
	return w.End < w.Start
}

// containsRange проверяет, лежит ли интервал [start, end] целиком внутри окна.
// Обе границы включительны. Для окна через полночь начало и конец
// проверяются раздельно относительно обёрнутых границ.
func (w MealWindow) containsRange(start, end int) bool {
	if !w.Wraps() {
		// Интервал через полночь (end < start) не может целиком
		// лежать в обычном дневном окне.
		return start <= end && start >= w.Start && end <= w.End
	}

	// Разворачиваем окно на ось следующего дня и переносим туда же
	// интервал, если он сам переходит через полночь или целиком лежит
	// в утреннем хвосте окна.
	wEnd := w.End + minutesPerDay
	s, e := start, end
	if e < s {
		e += minutesPerDay
	}
	if s < w.Start {
		s += minutesPerDay
		e += minutesPerDay
	}
	return s >= w.Start && e <= wEnd
}

// ContainsClock проверяет, попадает ли момент t в окно: Start <= t < End.
func (w MealWindow) ContainsClock(t int) bool {
	if !w.Wraps() {
		return t >= w.Start && t < w.End
	}
	return t >= w.Start || t < w.End
}

// MatchWindow находит единственное окно, целиком содержащее интервал брони.
// Ноль подходящих окон или больше одного — ошибка валидации,
// тип приёма пищи никогда не выбирается по умолчанию.
func MatchWindow(windows []MealWindow, startClock, endClock string) (MealWindow, error) {
	start, err := ParseClock(startClock)
	if err != nil {
		return MealWindow{}, err
	}
	end, err := ParseClock(endClock)
	if err != nil {
		return MealWindow{}, err
	}

	var matched []MealWindow
	for _, w := range windows {
		if w.containsRange(start, end) {
			matched = append(matched, w)
		}
	}

	switch len(matched) {
	case 1:
		return matched[0], nil
	case 0:
		return MealWindow{}, fmt.Errorf(
			"%w: interval %s-%s does not fit any meal window", ErrValidation, startClock, endClock)
	default:
		return MealWindow{}, fmt.Errorf(
			"%w: interval %s-%s must belong to exactly one meal type", ErrValidation, startClock, endClock)
	}
}

// FindWindowContaining возвращает окно, содержащее момент startClock.
// Используется для вывода времени окончания, когда клиент его не указал.
func FindWindowContaining(windows []MealWindow, startClock string) (MealWindow, error) {
	start, err := ParseClock(startClock)
	if err != nil {
		return MealWindow{}, err
	}
	for _, w := range windows {
		if w.ContainsClock(start) {
			return w, nil
		}
	}
	return MealWindow{}, fmt.Errorf(
		"%w: no meal window matches start time %s", ErrValidation, startClock)
}

// ClockRangesOverlap — пересечение полуоткрытых интервалов [aStart, aEnd)
// и [bStart, bEnd) в минутах от полуночи.
func ClockRangesOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}
